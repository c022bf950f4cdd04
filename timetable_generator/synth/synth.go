// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package synth

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/blocks"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/routeset"
)

const (
	// TerminalBlock marks the end-of-route entry of every timetable.
	TerminalBlock = -1

	// OutlierJump is the largest accepted increase over the previous kept time.
	OutlierJump = 1000

	// RepairStep is added to the previous kept time when no midpoint can be used.
	RepairStep = 20

	increasingToken = "__0_"
)

// Entry is a single (offset, block) timetable row. Time is expressed in seconds
// since the scheduled start of the trip.
type Entry struct {
	Time  float64
	Block int
}

type Action int

const (
	Kept Action = iota
	Repaired
	Excluded
	Outlier
	RepairFailed
)

func (a Action) String() string {
	switch a {
	case Kept:
		return "kept"
	case Repaired:
		return "repaired"
	case Excluded:
		return "excluded"
	case Outlier:
		return "outlier"
	case RepairFailed:
		return "repair_failed"
	default:
		return "unknown"
	}
}

// Step records what the repair sweep did with a single representative entry.
type Step struct {
	Action Action
	Block  int

	// Raw is the median entry time.
	Raw float64

	// Time is the time after repair; equal to Raw for kept entries.
	// For RepairFailed, it holds the rejected repaired time.
	Time float64
}

// Timetable is the synthesized canonical timetable of a single schedule.
type Timetable struct {
	Key string

	// Entries are non-decreasing in time and end with exactly one TerminalBlock entry.
	Entries []Entry

	// Trace lists the fate of every representative entry, in route order.
	Trace []Step

	// EndTime is the time of the terminal entry.
	EndTime int
}

// Median returns the median of samples, averaging the two middle values
// for even-length lists. Panics on an empty list.
func Median(samples []int) float64 {
	sorted := slices.Sorted(slices.Values(samples))
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

// IsIncreasing returns true if the schedule runs in the direction of increasing block numbers.
func IsIncreasing(key string) bool {
	return strings.Contains(key, increasingToken)
}

// Representatives computes the median time of every block with samples,
// ordered by block number (ascending if increasing, descending otherwise).
// Non-positive blocks never occupy the display and are skipped.
func Representatives(blocksTimes map[int][]int, increasing bool) []Entry {
	entries := make([]Entry, 0, len(blocksTimes))
	for block, samples := range blocksTimes {
		if block > 0 && len(samples) > 0 {
			entries = append(entries, Entry{Median(samples), block})
		}
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		if increasing {
			return cmp.Compare(a.Block, b.Block)
		}
		return cmp.Compare(b.Block, a.Block)
	})
	return entries
}

// EndTime returns the (truncated) latest representative time of a non-excluded block
// plus the end dwell, or just the end dwell if there are no such blocks.
func EndTime(representatives []Entry, rs *routeset.RouteSet) int {
	latest := math.Inf(-1)
	for _, e := range representatives {
		if !rs.Excludes(e.Block) {
			latest = max(latest, e.Time)
		}
	}

	if math.IsInf(latest, -1) {
		return rs.EndDwell
	}
	return int(latest) + rs.EndDwell
}

// Synthesize turns the block statistics of a single schedule into a canonical timetable.
func Synthesize(key string, e *blocks.Entry, rs *routeset.RouteSet) *Timetable {
	representatives := Representatives(e.BlocksTimes, IsIncreasing(key))
	t := &Timetable{
		Key:     key,
		Entries: make([]Entry, 0, len(representatives)+1),
		Trace:   make([]Step, 0, len(representatives)),
		EndTime: EndTime(representatives, rs),
	}

	for i, raw := range representatives {
		step := t.sweep(raw, representatives[i+1:], rs)
		t.Trace = append(t.Trace, step)
		if step.Action == Kept || step.Action == Repaired {
			t.Entries = append(t.Entries, Entry{step.Time, step.Block})
		}
	}

	// Repairs may push kept entries past the computed end time
	if n := len(t.Entries); n > 0 {
		t.EndTime = max(t.EndTime, int(math.Ceil(t.Entries[n-1].Time)))
	}

	t.Entries = append(t.Entries, Entry{float64(t.EndTime), TerminalBlock})
	return t
}

// sweep decides the fate of a single representative entry, given the
// already kept entries of t and the remaining (unprocessed) representatives.
func (t *Timetable) sweep(raw Entry, rest []Entry, rs *routeset.RouteSet) Step {
	step := Step{Action: Kept, Block: raw.Block, Raw: raw.Time, Time: raw.Time}

	if rs.Excludes(raw.Block) {
		step.Action = Excluded
		return step
	}

	if len(t.Entries) == 0 {
		return step
	}
	prev := t.Entries[len(t.Entries)-1].Time

	switch {
	case prev > 0 && raw.Time > prev+OutlierJump:
		step.Action = Outlier

	case raw.Time <= prev:
		if len(rest) > 0 && rest[0].Time > prev {
			step.Time = (prev + rest[0].Time) / 2
		} else {
			step.Time = prev + RepairStep
		}

		if step.Time > prev {
			step.Action = Repaired
		} else {
			step.Action = RepairFailed
		}
	}

	return step
}
