// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package match

import (
	"log/slog"
	"time"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/blocks"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/schedules"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/source"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/util/time2"
)

// Observation is a block entry attributed to a schedule.
type Observation struct {
	TrainID string
	TripID  string
	Key     schedules.Key
	Block   int

	// Elapsed is the number of seconds since the scheduled start of the trip.
	// Negative when a train reports before its scheduled departure.
	Elapsed int
}

// Matcher turns live train positions into block entry samples.
type Matcher struct {
	Bindings *schedules.Bindings
	Store    *blocks.Store
	Seen     *SeenTrains

	// Location in which live timestamps are converted to wall-clock times.
	// Defaults to time.Local.
	Location *time.Location
}

// Observe classifies a single live record, and records a sample in the Store
// if the train has just entered a new block or started a new trip.
//
// Live timestamps are reduced to a wall-clock time of the day without any
// midnight rollover, while trip start times come from folded static
// departure times. Trips running across midnight therefore produce large
// negative or positive elapsed values.
func (m *Matcher) Observe(t *source.TrackedTrain) (Observation, Result) {
	if !t.Complete() {
		return Observation{}, Incomplete
	}

	key, ok := m.Bindings.Lookup(t.TripID)
	if !ok {
		return Observation{}, Unbound
	}

	start, ok := m.Bindings.StartTime(t.TripID)
	if !ok {
		return Observation{}, NoStartTime
	}

	o := Observation{
		TrainID: string(t.TrainID),
		TripID:  t.TripID,
		Key:     key,
		Block:   t.CurrentBlock,
		Elapsed: int(time2.WallClock(t.Position.Timestamp.Time().In(m.location()))) - int(start),
	}

	last, seen := m.Seen.Get(o.TrainID)
	m.Seen.Set(o.TrainID, LastSeen{Block: o.Block, TripID: o.TripID})
	if seen && last.Block == o.Block && last.TripID == o.TripID {
		return o, Duplicate
	}

	m.Store.Record(o.Key, o.Block, o.Elapsed)
	return o, Recorded
}

// ObserveAll observes every train in order, returning recorded observations.
func (m *Matcher) ObserveAll(trains []*source.TrackedTrain, stats *Stats) []Observation {
	recorded := make([]Observation, 0)
	for _, t := range trains {
		o, r := m.Observe(t)
		if stats != nil {
			stats.Add(r)
		}

		if r == Recorded {
			slog.Debug(
				"Train entered block",
				"train", o.TrainID,
				"block", o.Block,
				"elapsed", o.Elapsed,
				"schedule", o.Key.String(),
			)
			recorded = append(recorded, o)
		}
	}
	return recorded
}

func (m *Matcher) location() *time.Location {
	if m.Location != nil {
		return m.Location
	}
	return time.Local
}
