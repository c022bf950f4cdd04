// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package secret

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

type MissingEnvironmentKey string

func (k MissingEnvironmentKey) Error() string {
	return fmt.Sprintf("%s environment variable not set", string(k))
}

// FromEnvironment reads a secret from the key environment variable,
// or from the file pointed to by the key_FILE variable.
func FromEnvironment(key string) (string, error) {
	value := os.Getenv(key)
	path := os.Getenv(key + "_FILE")
	if value == "" && path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		value = string(content)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", MissingEnvironmentKey(key)
	}
	return value, nil
}

// Optional is like FromEnvironment, but a missing secret is not an error.
func Optional(key string) (string, error) {
	value, err := FromEnvironment(key)
	var missing MissingEnvironmentKey
	if errors.As(err, &missing) {
		return "", nil
	}
	return value, err
}
