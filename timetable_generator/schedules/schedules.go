// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package schedules

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/util/time2"
)

const keySeparator = "_Schedule_"

type ErrInvalidKey string

func (e ErrInvalidKey) Error() string {
	return fmt.Sprintf("invalid schedule key: %q", string(e))
}

// Key identifies a distinct stop-timing pattern of a route.
type Key struct {
	Route string
	Index int
}

func (k Key) String() string {
	return k.Route + keySeparator + strconv.Itoa(k.Index)
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKey parses a "{route}_Schedule_{index}" key.
func ParseKey(s string) (Key, error) {
	route, index, ok := strings.Cut(s, keySeparator)
	if !ok || route == "" {
		return Key{}, ErrInvalidKey(s)
	}

	i, err := strconv.Atoi(index)
	if err != nil || i < 0 {
		return Key{}, ErrInvalidKey(s)
	}
	return Key{route, i}, nil
}

// Offset is a single stop of a Signature: minutes since the start of the trip.
type Offset struct {
	Minutes int
	StopID  string
}

func (o Offset) String() string {
	return fmt.Sprintf("%d mins @ %s", o.Minutes, o.StopID)
}

type Signature []Offset

func (s Signature) Equal(o Signature) bool {
	return slices.Equal(s, o)
}

type Schedule struct {
	Key        Key
	Signature  Signature
	TripIDs    []string
	StartTimes []time2.Time
}

type StopTime struct {
	TripID    string
	StopID    string
	Sequence  int
	Departure string
	Line      int
}

// Table holds the rows of stop_times.txt, grouped by trip.
type Table struct {
	// StopTimes maps trip_id to its stop_times, sorted by stop_sequence
	StopTimes map[string][]*StopTime

	// Origins lists every row with stop_sequence 0, in file order
	Origins []*StopTime
}

// Bindings maps trip ids to the schedule they follow and their start times.
// Trip ids are global across routes.
type Bindings struct {
	Trips      map[string]Key
	StartTimes map[string]time2.Time
	order      []string
}

func NewBindings() *Bindings {
	return &Bindings{
		Trips:      make(map[string]Key),
		StartTimes: make(map[string]time2.Time),
	}
}

func (b *Bindings) Bind(tripID string, key Key, start time2.Time) {
	if _, exists := b.Trips[tripID]; !exists {
		b.order = append(b.order, tripID)
	}
	b.Trips[tripID] = key
	b.StartTimes[tripID] = start
}

func (b *Bindings) Lookup(tripID string) (Key, bool) {
	k, ok := b.Trips[tripID]
	return k, ok
}

func (b *Bindings) StartTime(tripID string) (time2.Time, bool) {
	t, ok := b.StartTimes[tripID]
	return t, ok
}

// StartTimesOf returns start times (in seconds since midnight) of all trips
// bound to key, in the order the trips were first bound.
func (b *Bindings) StartTimesOf(key Key) []int {
	times := make([]int, 0)
	for _, tripID := range b.order {
		if b.Trips[tripID] != key {
			continue
		}
		if start, ok := b.StartTimes[tripID]; ok {
			times = append(times, int(start))
		}
	}
	return times
}

func (b *Bindings) Len() int {
	return len(b.Trips)
}
