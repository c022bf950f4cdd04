// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package schedules

import (
	"cmp"
	"slices"
	"strings"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/util/time2"
)

const minutesPerDay = 24 * 60

type origin struct {
	tripID    string
	departure int
}

// Derive groups all trips of route by their stop-timing signature and binds
// every such trip to the (route, schedule index) pair and its start time.
//
// Only trips whose ids contain route and every token of dayFilter are considered.
// Schedule indices are assigned in order of first appearance among trips sorted
// by departure time. Derive fails without touching b if any considered stop time
// is malformed, as skipping a trip would shift the indices of later schedules.
func (b *Bindings) Derive(route string, dayFilter []string, table *Table) ([]*Schedule, error) {
	// 1. Find the trips of the route, in departure order
	origins := make([]origin, 0)
	for _, st := range table.Origins {
		if !matchesFilter(st.TripID, route, dayFilter) {
			continue
		}

		t, days, err := time2.ParseServiceTime(st.Departure)
		if err != nil {
			return nil, ErrInvalidValue{stopTimesFile, "departure_time", st.Line, err}
		}
		origins = append(origins, origin{st.TripID, days*time2.Day + int(t)})
	}
	slices.SortStableFunc(origins, func(a, b origin) int { return cmp.Compare(a.departure, b.departure) })

	// 2. Compute the signature of every trip
	var schedules []*Schedule
	type binding struct {
		tripID string
		key    Key
		start  time2.Time
	}
	bindings := make([]binding, 0, len(origins))
	seen := make(map[string]bool, len(origins))

	for _, o := range origins {
		if seen[o.tripID] {
			continue
		}
		seen[o.tripID] = true

		start, signature, err := tripSignature(table.StopTimes[o.tripID])
		if err != nil {
			return nil, err
		}

		// 3. Find a matching schedule, or create a new one
		idx := slices.IndexFunc(schedules, func(s *Schedule) bool { return s.Signature.Equal(signature) })
		if idx < 0 {
			idx = len(schedules)
			schedules = append(schedules, &Schedule{
				Key:       Key{route, idx},
				Signature: signature,
			})
		}

		s := schedules[idx]
		s.TripIDs = append(s.TripIDs, o.tripID)
		s.StartTimes = append(s.StartTimes, start)
		bindings = append(bindings, binding{o.tripID, s.Key, start})
	}

	// 4. Commit the bindings
	for _, bd := range bindings {
		b.Bind(bd.tripID, bd.key, bd.start)
	}

	return schedules, nil
}

func matchesFilter(tripID, route string, dayFilter []string) bool {
	if !strings.Contains(tripID, route) {
		return false
	}
	for _, token := range dayFilter {
		if !strings.Contains(tripID, token) {
			return false
		}
	}
	return true
}

// tripSignature returns the start time of a trip and offsets of its stops
// in whole minutes. A negative offset means the trip crossed midnight.
func tripSignature(stopTimes []*StopTime) (start time2.Time, signature Signature, err error) {
	if len(stopTimes) == 0 {
		return
	}

	start, _, err = time2.ParseServiceTime(stopTimes[0].Departure)
	if err != nil {
		err = ErrInvalidValue{stopTimesFile, "departure_time", stopTimes[0].Line, err}
		return
	}
	startMinutes := start.Minutes()

	signature = make(Signature, 0, len(stopTimes))
	for _, st := range stopTimes {
		var t time2.Time
		t, _, err = time2.ParseServiceTime(st.Departure)
		if err != nil {
			err = ErrInvalidValue{stopTimesFile, "departure_time", st.Line, err}
			return
		}

		offset := t.Minutes() - startMinutes
		if offset < 0 {
			offset += minutesPerDay
		}
		signature = append(signature, Offset{offset, st.StopID})
	}

	return
}
