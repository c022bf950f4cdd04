// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package synth

import (
	"math/rand/v2"
	"testing"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/blocks"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/routeset"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/util/time2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const increasingKey = "JVL__0__Schedule_0"

func newRouteSet(dwell int, excluded ...int) *routeset.RouteSet {
	return &routeset.RouteSet{
		Name:           "JVL",
		Filter:         "JVL",
		EndDwell:       dwell,
		ExcludedBlocks: routeset.BlocksOf(excluded...),
		Color:          routeset.White,
	}
}

func entry(blocksTimes map[int][]int) *blocks.Entry {
	return &blocks.Entry{StartTimes: []int{21600}, BlocksTimes: blocksTimes}
}

func assertCanonical(t *testing.T, tt *Timetable) {
	t.Helper()
	require.NotEmpty(t, tt.Entries)
	for i := 1; i < len(tt.Entries); i++ {
		assert.LessOrEqual(t, tt.Entries[i-1].Time, tt.Entries[i].Time, "entries %d and %d", i-1, i)
	}
	for _, e := range tt.Entries[:len(tt.Entries)-1] {
		assert.NotEqual(t, TerminalBlock, e.Block)
	}
	assert.Equal(t, TerminalBlock, tt.Entries[len(tt.Entries)-1].Block)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 30.0, Median([]int{10, 50, 30}))
	assert.Equal(t, 30.0, Median([]int{50, 30, 10}))
	assert.Equal(t, 25.0, Median([]int{40, 10, 30, 20}))
	assert.Equal(t, 5.5, Median([]int{5, 6}))
	assert.Equal(t, -7.0, Median([]int{-7}))
}

func TestMedianDoesNotMutate(t *testing.T) {
	samples := []int{50, 10, 30}
	Median(samples)
	assert.Equal(t, []int{50, 10, 30}, samples)
}

func TestIsIncreasing(t *testing.T) {
	assert.True(t, IsIncreasing("JVL__0__Schedule_1"))
	assert.False(t, IsIncreasing("JVL__1__Schedule_1"))
}

func TestRepresentatives(t *testing.T) {
	bt := map[int][]int{103: {30}, 101: {10, 50, 30}, 102: {}, 105: {70, 90}}

	assert.Equal(t, []Entry{{30, 101}, {30, 103}, {80, 105}}, Representatives(bt, true))
	assert.Equal(t, []Entry{{80, 105}, {30, 103}, {30, 101}}, Representatives(bt, false))
}

func TestSynthesizeKeepsIncreasing(t *testing.T) {
	tt := Synthesize(increasingKey, entry(map[int][]int{1: {0}, 2: {60, 70, 65}, 3: {120}}), newRouteSet(300))

	assertCanonical(t, tt)
	assert.Equal(t, []Entry{{0, 1}, {65, 2}, {120, 3}, {420, TerminalBlock}}, tt.Entries)
	assert.Equal(t, 420, tt.EndTime)
}

func TestSynthesizeSkipsNonPositiveBlocks(t *testing.T) {
	tt := Synthesize(
		increasingKey,
		entry(map[int][]int{TerminalBlock: {10}, 0: {5}, 1: {50}, 2: {100}}),
		newRouteSet(30),
	)

	assertCanonical(t, tt)
	assert.Equal(t, []Entry{{50, 1}, {100, 2}, {130, TerminalBlock}}, tt.Entries)
	assert.Equal(t, 130, tt.EndTime)
}

func TestSynthesizeDecreasingDirection(t *testing.T) {
	tt := Synthesize("JVL__1__Schedule_0", entry(map[int][]int{1: {120}, 2: {60}, 3: {0}}), newRouteSet(60))

	assertCanonical(t, tt)
	assert.Equal(t, []Entry{{0, 3}, {60, 2}, {120, 1}, {180, TerminalBlock}}, tt.Entries)
}

func TestSynthesizeExclusion(t *testing.T) {
	tt := Synthesize(
		increasingKey,
		entry(map[int][]int{101: {0}, 102: {50}, 103: {5000}, 105: {100}}),
		newRouteSet(300, 101, 103),
	)

	assertCanonical(t, tt)
	assert.Equal(t, []Entry{{50, 102}, {100, 105}, {400, TerminalBlock}}, tt.Entries)
	assert.Equal(t, Excluded, tt.Trace[0].Action)
	assert.Equal(t, Excluded, tt.Trace[2].Action)
}

func TestSynthesizeOutlierDrop(t *testing.T) {
	tt := Synthesize(increasingKey, entry(map[int][]int{1: {100}, 2: {2000}, 3: {150}}), newRouteSet(300))

	assertCanonical(t, tt)
	assert.Equal(t, []Entry{{100, 1}, {150, 3}, {2300, TerminalBlock}}, tt.Entries)
	assert.Equal(t, []Action{Kept, Outlier, Kept}, actions(tt))
}

func TestSynthesizeNoOutlierAfterNonPositive(t *testing.T) {
	tt := Synthesize(increasingKey, entry(map[int][]int{1: {0}, 2: {2000}}), newRouteSet(10))

	assert.Equal(t, []Entry{{0, 1}, {2000, 2}, {2010, TerminalBlock}}, tt.Entries)
}

func TestSynthesizeMidpointRepair(t *testing.T) {
	tt := Synthesize(increasingKey, entry(map[int][]int{1: {100}, 2: {90}, 3: {200}}), newRouteSet(300))

	assertCanonical(t, tt)
	assert.Equal(t, []Entry{{100, 1}, {150, 2}, {200, 3}, {500, TerminalBlock}}, tt.Entries)
	assert.Equal(t, Step{Action: Repaired, Block: 2, Raw: 90, Time: 150}, tt.Trace[1])
}

func TestSynthesizeFallbackRepairChain(t *testing.T) {
	tt := Synthesize(increasingKey, entry(map[int][]int{1: {100}, 2: {50}, 3: {40}}), newRouteSet(300))

	assertCanonical(t, tt)
	assert.Equal(t, []Entry{{100, 1}, {120, 2}, {140, 3}, {400, TerminalBlock}}, tt.Entries)
	assert.Equal(t, []Action{Kept, Repaired, Repaired}, actions(tt))
}

func TestSynthesizeEndTimeCoversRepairs(t *testing.T) {
	tt := Synthesize(increasingKey, entry(map[int][]int{1: {100}, 2: {50}, 3: {40}}), newRouteSet(0))

	assertCanonical(t, tt)
	assert.Equal(t, []Entry{{100, 1}, {120, 2}, {140, 3}, {140, TerminalBlock}}, tt.Entries)
	assert.Equal(t, 140, tt.EndTime)
}

func TestSynthesizeEndTimeTruncatesMedian(t *testing.T) {
	tt := Synthesize(increasingKey, entry(map[int][]int{1: {10, 11}}), newRouteSet(5))

	assert.Equal(t, []Entry{{10.5, 1}, {15, TerminalBlock}}, tt.Entries)
}

func TestSynthesizeNoValidSamples(t *testing.T) {
	tt := Synthesize(increasingKey, entry(map[int][]int{101: {10}, 102: {}}), newRouteSet(300, 101))

	assert.Equal(t, []Entry{{300, TerminalBlock}}, tt.Entries)
	assert.Equal(t, 300, tt.EndTime)

	tt = Synthesize(increasingKey, entry(map[int][]int{}), newRouteSet(60))
	assert.Equal(t, []Entry{{60, TerminalBlock}}, tt.Entries)
}

func TestSynthesizeFirstKeptIsUnchecked(t *testing.T) {
	// Once the first block is excluded, the next one is kept regardless of its time
	tt := Synthesize(increasingKey, entry(map[int][]int{101: {500}, 102: {-30}}), newRouteSet(300, 101))

	assert.Equal(t, []Entry{{-30, 102}, {270, TerminalBlock}}, tt.Entries)
}

func TestSynthesizeRandomIsCanonical(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		bt := make(map[int][]int)
		for range r.IntN(20) {
			block := 100 + r.IntN(40)
			if r.IntN(10) == 0 {
				block = TerminalBlock
			}
			for range 1 + r.IntN(5) {
				bt[block] = append(bt[block], r.IntN(4000)-500)
			}
		}

		excluded := []int{100 + r.IntN(40), 100 + r.IntN(40)}
		rs := newRouteSet(r.IntN(300), excluded...)
		key := increasingKey
		if r.IntN(2) == 0 {
			key = "JVL__1__Schedule_0"
		}

		tt := Synthesize(key, entry(bt), rs)
		assertCanonical(t, tt)
		for _, e := range tt.Entries {
			assert.False(t, rs.Excludes(e.Block), "excluded block %d kept", e.Block)
		}
		assert.Len(t, tt.Trace, len(Representatives(bt, true)))
	}
}

func TestElapsed(t *testing.T) {
	assert.Equal(t, 600, Elapsed(6*time2.Hour, 6*time2.Hour+10*time2.Minute))
	assert.Equal(t, 0, Elapsed(6*time2.Hour, 6*time2.Hour))
	assert.Equal(t, 15*time2.Minute, Elapsed(23*time2.Hour+50*time2.Minute, 5*time2.Minute))
}

func TestBlockAt(t *testing.T) {
	tt := Synthesize(increasingKey, entry(map[int][]int{1: {0}, 2: {60}, 3: {120}}), newRouteSet(300))

	assert.Equal(t, 1, tt.BlockAt(-10))
	assert.Equal(t, 1, tt.BlockAt(0))
	assert.Equal(t, 1, tt.BlockAt(59))
	assert.Equal(t, 2, tt.BlockAt(60))
	assert.Equal(t, 3, tt.BlockAt(419))
	assert.Equal(t, TerminalBlock, tt.BlockAt(420))

	assert.Equal(t, 0, (&Timetable{}).BlockAt(5))
}

func TestVisible(t *testing.T) {
	tt := Synthesize(increasingKey, entry(map[int][]int{1: {0}, 2: {60}}), newRouteSet(300))

	assert.False(t, tt.Visible(0))
	assert.True(t, tt.Visible(1))
	assert.True(t, tt.Visible(359))
	assert.False(t, tt.Visible(360))
	assert.False(t, (&Timetable{}).Visible(1))
}

func actions(tt *Timetable) []Action {
	a := make([]Action, len(tt.Trace))
	for i, s := range tt.Trace {
		a[i] = s.Action
	}
	return a
}
