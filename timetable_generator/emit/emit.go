// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package emit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/blocks"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/routeset"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/synth"
)

const (
	Compact       = false
	HumanReadable = true
)

// ErrOutOfRange is returned when a value does not fit the display's storage types.
type ErrOutOfRange struct {
	Route string
	Field string
	Value int
}

func (e ErrOutOfRange) Error() string {
	return fmt.Sprintf("%s: %s %d does not fit the display timetable", e.Route, e.Field, e.Value)
}

// Table is the set of all timetables loaded onto the display.
type Table struct {
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Routes    []*Route  `json:"routes"`
}

// Route is a single emitted (route, schedule) timetable.
type Route struct {
	Key        string         `json:"key"`
	Class      string         `json:"class"`
	RouteSet   string         `json:"route_set"`
	Color      routeset.Color `json:"color"`
	StartTimes []int          `json:"start_times"`
	Timetable  []Row          `json:"timetable"`

	synthesized *synth.Timetable
}

// Row is a timetable entry as stored on the display, truncated to whole seconds.
type Row struct {
	Offset int `json:"offset"`
	Block  int `json:"block"`
}

// Build synthesizes the timetable of every checkpointed schedule matching any route set.
// Routes are emitted in route set order, and then in schedule key order.
// Routes which do not fit the display's integer ranges are logged and skipped.
func Build(c blocks.Checkpoint, cfg *routeset.Config) (*Table, error) {
	t := &Table{Version: cfg.Version, Timestamp: time.Now(), Routes: make([]*Route, 0)}
	keys := c.Keys()

	for _, rs := range cfg.RouteSets {
		for _, key := range keys {
			if !rs.Matches(key) || c[key] == nil {
				continue
			}

			r, err := buildRoute(key, c[key], rs)
			if err != nil {
				slog.Warn("Skipping route", "route_set", rs.Name, "error", err)
				continue
			}
			t.Routes = append(t.Routes, r)
		}
	}

	return t, nil
}

func buildRoute(key string, e *blocks.Entry, rs *routeset.RouteSet) (*Route, error) {
	s := synth.Synthesize(key, e, rs)
	r := &Route{
		Key:         key,
		Class:       Sanitize(key),
		RouteSet:    rs.Name,
		Color:       rs.Color,
		StartTimes:  e.StartTimes,
		Timetable:   make([]Row, len(s.Entries)),
		synthesized: s,
	}
	if r.StartTimes == nil {
		r.StartTimes = make([]int, 0)
	}

	for i, entry := range s.Entries {
		r.Timetable[i] = Row{Offset: int(entry.Time), Block: entry.Block}
		if err := checkInt16(key, "offset", r.Timetable[i].Offset); err != nil {
			return nil, err
		}
		if err := checkInt16(key, "block", entry.Block); err != nil {
			return nil, err
		}
	}

	for _, start := range r.StartTimes {
		if start < 0 || int64(start) > math.MaxUint32 {
			return nil, ErrOutOfRange{Route: key, Field: "start time", Value: start}
		}
	}

	return r, nil
}

func checkInt16(route, field string, value int) error {
	if value < math.MinInt16 || value > math.MaxInt16 {
		return ErrOutOfRange{Route: route, Field: field, Value: value}
	}
	return nil
}

// Synthesized returns the synthesized timetable, including the repair trace.
func (r *Route) Synthesized() *synth.Timetable {
	return r.synthesized
}

// Size returns the approximate number of bytes the route takes on the display.
func (r *Route) Size() int {
	return 4*len(r.Timetable) + 4*len(r.StartTimes)
}

func (t *Table) Size() int {
	total := 0
	for _, r := range t.Routes {
		total += r.Size()
	}
	return total
}

// Registry returns class names of all routes, in emission order.
func (t *Table) Registry() []string {
	names := make([]string, len(t.Routes))
	for i, r := range t.Routes {
		names[i] = r.Class
	}
	return names
}

// RouteSetCounts returns the number of emitted routes per route set.
func (t *Table) RouteSetCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range t.Routes {
		counts[r.RouteSet]++
	}
	return counts
}

func (t *Table) DumpJSON(w io.Writer, humanReadable bool) error {
	e := json.NewEncoder(w)
	if humanReadable {
		e.SetIndent("", "\t")
	}
	return e.Encode(t)
}

func (t *Table) DumpJSONFile(path string, humanReadable bool) error {
	return dumpFile(path, func(w io.Writer) error { return t.DumpJSON(w, humanReadable) })
}

func (t *Table) DumpHeaderFile(path string) error {
	return dumpFile(path, t.WriteHeader)
}

// HeaderFileName returns the name under which the display firmware includes the table.
func HeaderFileName(version string) string {
	return version + "_Timetable.h"
}

var invalidIdentifierChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Sanitize turns a schedule key into a valid C++ identifier.
func Sanitize(name string) string {
	s := invalidIdentifierChars.ReplaceAllString(name, "_")
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	return s
}

func dumpFile(path string, dump func(io.Writer) error) (err error) {
	tempPath := getTempOutputPath(path)
	defer func() {
		if err != nil {
			os.Remove(tempPath)
		}
	}()

	{
		f, err := os.Create(tempPath)
		if err != nil {
			return err
		}
		defer f.Close()

		b := bufio.NewWriter(f)
		err = dump(b)
		if err != nil {
			return err
		}

		err = b.Flush()
		if err != nil {
			return err
		}
	}

	return os.Rename(tempPath, path)
}

func getTempOutputPath(path string) string {
	dir, name := filepath.Split(path)
	return fmt.Sprintf("%s.%s.tmp", dir, name)
}
