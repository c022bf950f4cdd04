// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package synth

import "github.com/livetrainmap/LiveTrainMap/timetable_generator/util/time2"

// Elapsed returns the number of seconds since a train's start time,
// assuming a start time after now belongs to the previous day.
func Elapsed(start, now time2.Time) int {
	if now >= start {
		return int(now - start)
	}
	return int(time2.Day-start) + int(now)
}

// BlockAt returns the block occupied elapsed seconds into the trip: the block
// of the last entry at or before elapsed, or the first block if the trip has
// not reached any entry yet. Entry times are truncated to whole seconds, as
// they are stored on the display.
func (t *Timetable) BlockAt(elapsed int) int {
	if len(t.Entries) == 0 {
		return 0
	}

	for i := len(t.Entries) - 1; i >= 0; i-- {
		if int(t.Entries[i].Time) <= elapsed {
			return t.Entries[i].Block
		}
	}
	return t.Entries[0].Block
}

// Visible returns true if elapsed lies strictly between the first and the last entry.
func (t *Timetable) Visible(elapsed int) bool {
	if len(t.Entries) == 0 {
		return false
	}
	first := int(t.Entries[0].Time)
	last := int(t.Entries[len(t.Entries)-1].Time)
	return elapsed > first && elapsed < last
}
