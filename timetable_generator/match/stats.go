// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package match

// Result classifies what happened to a single live observation.
type Result int

const (
	Recorded Result = iota
	Duplicate
	Unbound
	NoStartTime
	Incomplete
)

var resultNames = [...]string{"recorded", "duplicate", "unbound", "no_start_time", "incomplete"}

func (r Result) String() string {
	if r < 0 || int(r) >= len(resultNames) {
		return "unknown"
	}
	return resultNames[r]
}

// Results lists every Result, in declaration order.
func Results() []Result {
	return []Result{Recorded, Duplicate, Unbound, NoStartTime, Incomplete}
}

// Stats counts observation results of a single fetch.
type Stats struct {
	Recorded    int
	Duplicate   int
	Unbound     int
	NoStartTime int
	Incomplete  int
}

func (s *Stats) Add(r Result) {
	switch r {
	case Recorded:
		s.Recorded++
	case Duplicate:
		s.Duplicate++
	case Unbound:
		s.Unbound++
	case NoStartTime:
		s.NoStartTime++
	case Incomplete:
		s.Incomplete++
	}
}

func (s Stats) Count(r Result) int {
	switch r {
	case Recorded:
		return s.Recorded
	case Duplicate:
		return s.Duplicate
	case Unbound:
		return s.Unbound
	case NoStartTime:
		return s.NoStartTime
	case Incomplete:
		return s.Incomplete
	default:
		return 0
	}
}

func (s Stats) Total() int {
	return s.Recorded + s.Duplicate + s.Unbound + s.NoStartTime + s.Incomplete
}
