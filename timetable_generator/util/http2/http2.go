// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package http2

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/protobuf/proto"
)

// MaxBodySize caps how much of a response body is read.
const MaxBodySize = 25 * 1024 * 1024

type Error struct {
	URL, Status string
	StatusCode  int
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.URL, e.Status)
}

func Check(r *http.Response) error {
	if r.StatusCode >= 400 && r.StatusCode < 600 {
		io.Copy(io.Discard, r.Body)
		r.Body.Close()
		return &Error{
			URL:        r.Request.URL.Redacted(),
			Status:     r.Status,
			StatusCode: r.StatusCode,
		}
	}
	return nil
}

func do(client *http.Client, req *http.Request) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	} else if err = Check(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func GetJSON[T any](client *http.Client, req *http.Request) (*T, error) {
	resp, err := do(client, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	content := new(T)
	dec := json.NewDecoder(io.LimitReader(resp.Body, MaxBodySize))
	if err := dec.Decode(content); err != nil {
		return nil, fmt.Errorf("%s: %w", req.URL.Redacted(), err)
	}
	return content, nil
}

// GetProto fetches a binary protobuf message into m.
func GetProto(client *http.Client, req *http.Request, m proto.Message) error {
	resp, err := do(client, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return fmt.Errorf("%s: %w", req.URL.Redacted(), err)
	}

	if err := proto.Unmarshal(data, m); err != nil {
		return fmt.Errorf("%s: %w", req.URL.Redacted(), err)
	}
	return nil
}
