// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package time2

import (
	"fmt"
	"time"
)

// DefaultTimezone is the zone in which live feed timestamps are turned into wall-clock times.
const DefaultTimezone = "Pacific/Auckland"

func LoadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s timezone: %w", name, err)
	}
	return loc, nil
}
