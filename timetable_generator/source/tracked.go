// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"net/http"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/util/http2"
)

const DefaultTrackedTrainsURL = "http://localhost:3000/wlg-ltm/api/trackedtrains"

// Fetcher returns the current state of all tracked trains.
type Fetcher interface {
	Fetch(ctx context.Context) ([]*TrackedTrain, error)
}

type JSONFetcher struct {
	URL    string
	APIKey string
	Client *http.Client
}

func (f *JSONFetcher) Fetch(ctx context.Context) ([]*TrackedTrain, error) {
	return FetchTrackedTrains(ctx, f.URL, f.APIKey, f.Client)
}

func FetchTrackedTrains(ctx context.Context, url, apikey string, client *http.Client) ([]*TrackedTrain, error) {
	req, err := newRequest(ctx, url, apikey)
	if err != nil {
		return nil, err
	}

	trains, err := http2.GetJSON[[]*TrackedTrain](client, req)
	if err != nil {
		return nil, err
	}
	return *trains, nil
}

func newRequest(ctx context.Context, url, apikey string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	if apikey != "" {
		req.Header.Set("X-Api-Key", apikey)
	}
	return req, nil
}
