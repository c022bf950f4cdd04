// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/util/http2"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/util/time2"
	"google.golang.org/protobuf/encoding/prototext"
)

// GTFSRealtimeFetcher reads tracked trains from a GTFS-Realtime VehiclePositions feed
// of a block-occupancy system, which publishes the occupied block as the stop_id.
type GTFSRealtimeFetcher struct {
	URL    string
	APIKey string
	Client *http.Client

	// DumpPath, if not empty, receives a human-readable copy of the last fetched feed
	DumpPath string
}

func (f *GTFSRealtimeFetcher) Fetch(ctx context.Context) ([]*TrackedTrain, error) {
	m, err := FetchVehiclePositions(ctx, f.URL, f.APIKey, f.Client)
	if err != nil {
		return nil, err
	}

	if f.DumpPath != "" {
		if err := DumpFeedFile(m, f.DumpPath); err != nil {
			slog.Error("Failed to dump GTFS-Realtime feed", "path", f.DumpPath, "error", err)
		}
	}

	return TrackedTrainsFromFeed(m), nil
}

func FetchVehiclePositions(ctx context.Context, url, apikey string, client *http.Client) (*gtfs.FeedMessage, error) {
	req, err := newRequest(ctx, url, apikey)
	if err != nil {
		return nil, err
	}

	m := new(gtfs.FeedMessage)
	if err := http2.GetProto(client, req, m); err != nil {
		return nil, err
	}
	return m, nil
}

func TrackedTrainsFromFeed(m *gtfs.FeedMessage) []*TrackedTrain {
	headerTimestamp := m.GetHeader().GetTimestamp()
	trains := make([]*TrackedTrain, 0, len(m.GetEntity()))

	for _, e := range m.GetEntity() {
		v := e.GetVehicle()
		if v == nil {
			continue
		}

		t := &TrackedTrain{
			TrainID: TrainID(v.GetVehicle().GetId()),
			TripID:  v.GetTrip().GetTripId(),
		}
		if t.TrainID == "" {
			t.TrainID = TrainID(v.GetVehicle().GetLabel())
		}
		if t.TrainID == "" {
			t.TrainID = TrainID(e.GetId())
		}

		if block, err := strconv.Atoi(v.GetStopId()); err == nil {
			t.CurrentBlock = block
		}

		ts := v.GetTimestamp()
		if ts == 0 {
			ts = headerTimestamp
		}
		if ts != 0 {
			t.Position.Timestamp = time2.UnixTime(time.Unix(int64(ts), 0))
		}

		trains = append(trains, t)
	}

	return trains
}

func DumpFeed(w io.Writer, m *gtfs.FeedMessage) error {
	data, err := prototext.MarshalOptions{Multiline: true}.Marshal(m)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func DumpFeedFile(m *gtfs.FeedMessage, path string) error {
	dir, name := filepath.Split(path)
	tempPath := fmt.Sprintf("%s.%s.tmp", dir, name)

	{
		f, err := os.Create(tempPath)
		if err != nil {
			return err
		}
		defer f.Close()

		b := bufio.NewWriter(f)
		if err := DumpFeed(b, m); err != nil {
			return err
		}
		if err := b.Flush(); err != nil {
			return err
		}
	}

	return os.Rename(tempPath, path)
}
