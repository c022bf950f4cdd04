// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package blocks

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/schedules"
)

// Samples maps a block to the elapsed seconds (since the scheduled trip start)
// at which trains were seen entering it.
type Samples map[int][]int

// Store accumulates block entry times for every (route, schedule) pair.
// It is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	data map[schedules.Key]Samples
}

func NewStore() *Store {
	return &Store{data: make(map[schedules.Key]Samples)}
}

func (s *Store) Record(key schedules.Key, block, elapsed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	samples := s.data[key]
	if samples == nil {
		samples = make(Samples)
		s.data[key] = samples
	}
	samples[block] = append(samples[block], elapsed)
}

// Samples returns a copy of the samples recorded for a block.
func (s *Store) Samples(key schedules.Key, block int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data[key][block])
}

// Blocks returns the number of (route, schedule, block) triples with at least one sample.
func (s *Store) Blocks() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, samples := range s.data {
		n += len(samples)
	}
	return n
}

// Checkpoint takes a snapshot of all samples. Start times of every trip bound
// to a recorded schedule are taken from bindings.
func (s *Store) Checkpoint(bindings *schedules.Bindings) Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := make(Checkpoint, len(s.data))
	for key, samples := range s.data {
		e := &Entry{
			StartTimes:  make([]int, 0),
			BlocksTimes: make(map[int][]int, len(samples)),
		}
		if bindings != nil {
			e.StartTimes = bindings.StartTimesOf(key)
		}
		for block, elapsed := range samples {
			e.BlocksTimes[block] = slices.Clone(elapsed)
		}
		c[key.String()] = e
	}
	return c
}

// Restore replaces all samples with the contents of a checkpoint.
// Entries with keys not in the "{route}_Schedule_{index}" form are skipped.
func (s *Store) Restore(c Checkpoint) {
	data := make(map[schedules.Key]Samples, len(c))
	for rawKey, e := range c {
		if e == nil {
			continue
		}

		key, err := schedules.ParseKey(rawKey)
		if err != nil {
			slog.Warn("Skipping checkpoint entry", "key", rawKey, "error", err)
			continue
		}

		samples := make(Samples, len(e.BlocksTimes))
		for block, elapsed := range e.BlocksTimes {
			samples[block] = slices.Clone(elapsed)
		}
		data[key] = samples
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
}

// WriteSummary lists the earliest entry time of every block, per schedule.
func (s *Store) WriteSummary(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := slices.SortedFunc(maps.Keys(s.data), func(a, b schedules.Key) int {
		return cmp.Or(cmp.Compare(a.Route, b.Route), cmp.Compare(a.Index, b.Index))
	})

	type earliest struct{ elapsed, block int }

	for _, key := range keys {
		if _, err := fmt.Fprintf(w, "\nRoute: %s Schedule %d\nBlock Schedule:\n", key.Route, key.Index); err != nil {
			return err
		}

		var rows []earliest
		for block, elapsed := range s.data[key] {
			if len(elapsed) > 0 {
				rows = append(rows, earliest{slices.Min(elapsed), block})
			}
		}
		slices.SortFunc(rows, func(a, b earliest) int {
			return cmp.Or(cmp.Compare(a.elapsed, b.elapsed), cmp.Compare(a.block, b.block))
		})

		if len(rows) == 0 {
			if _, err := fmt.Fprintln(w, " - No block data collected yet"); err != nil {
				return err
			}
		}
		for _, r := range rows {
			if _, err := fmt.Fprintf(w, " - %d secs @ Block %d\n", r.elapsed, r.block); err != nil {
				return err
			}
		}
	}
	return nil
}
