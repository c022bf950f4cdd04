// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package schedules

import (
	"archive/zip"
	"cmp"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/util/mcsv"
)

const stopTimesFile = "stop_times.txt"

type ErrInvalidValue struct {
	File, Column string
	Line         int
	Reason       error
}

func (e ErrInvalidValue) Error() string {
	if e.Reason == nil {
		return fmt.Sprintf("%s:%d: invalid %s", e.File, e.Line, e.Column)
	}
	return fmt.Sprintf("%s:%d: invalid %s: %s", e.File, e.Line, e.Column, e.Reason)
}

func (e ErrInvalidValue) Unwrap() error {
	return e.Reason
}

// LoadStopTimesFromPath loads stop_times from a GTFS directory,
// a GTFS zip archive or directly from a CSV file.
func LoadStopTimesFromPath(path string) (*Table, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if stat.IsDir() {
		return LoadStopTimesFromFS(os.DirFS(path))
	}

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		arch, err := zip.OpenReader(path)
		if err != nil {
			return nil, err
		}
		defer arch.Close()
		return LoadStopTimesFromFS(arch)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadStopTimes(f)
}

func LoadStopTimesFromFS(gtfs fs.FS) (*Table, error) {
	f, err := gtfs.Open(stopTimesFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadStopTimes(f)
}

func LoadStopTimes(stopTimes io.Reader) (*Table, error) {
	t := &Table{StopTimes: make(map[string][]*StopTime)}

	r := mcsv.NewReader(stopTimes)
	if err := r.Require("trip_id", "stop_sequence", "departure_time", "stop_id"); err != nil {
		return nil, fmt.Errorf("%s: %w", stopTimesFile, err)
	}

	for row := range r.Iter() {
		st := &StopTime{
			TripID:    row["trip_id"],
			StopID:    row["stop_id"],
			Departure: row["departure_time"],
			Line:      r.Line(),
		}

		if st.TripID == "" {
			return nil, ErrInvalidValue{stopTimesFile, "trip_id", st.Line, nil}
		}

		var err error
		st.Sequence, err = strconv.Atoi(row["stop_sequence"])
		if err != nil {
			return nil, ErrInvalidValue{stopTimesFile, "stop_sequence", st.Line, err}
		}

		t.StopTimes[st.TripID] = append(t.StopTimes[st.TripID], st)
		if st.Sequence == 0 {
			t.Origins = append(t.Origins, st)
		}
	}

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", stopTimesFile, err)
	}

	for _, sts := range t.StopTimes {
		slices.SortStableFunc(sts, func(a, b *StopTime) int { return cmp.Compare(a.Sequence, b.Sequence) })
	}

	return t, nil
}
