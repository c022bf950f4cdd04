// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package match

import (
	"time"

	"github.com/bluele/gcache"
)

const DefaultSeenTrainsSize = 4096

// LastSeen is the last (block, trip) recorded for a train.
type LastSeen struct {
	Block  int
	TripID string
}

// SeenTrains remembers the last recorded (block, trip) of every live train.
// Entries are evicted least-recently-used past size, and ttl (when non-zero)
// after their last Set. Callers must Set every observed train so that only
// trains absent from the feed for ttl are forgotten.
type SeenTrains struct {
	cache gcache.Cache
}

func NewSeenTrains(size int, ttl time.Duration) *SeenTrains {
	return newSeenTrains(size, ttl, gcache.NewRealClock())
}

func newSeenTrains(size int, ttl time.Duration, clock gcache.Clock) *SeenTrains {
	if size <= 0 {
		size = DefaultSeenTrainsSize
	}

	b := gcache.New(size).LRU().Clock(clock)
	if ttl > 0 {
		b = b.Expiration(ttl)
	}
	return &SeenTrains{cache: b.Build()}
}

func (s *SeenTrains) Get(trainID string) (LastSeen, bool) {
	v, err := s.cache.Get(trainID)
	if err != nil {
		return LastSeen{}, false
	}
	return v.(LastSeen), true
}

func (s *SeenTrains) Set(trainID string, l LastSeen) {
	// Set only fails for loader-backed caches
	_ = s.cache.Set(trainID, l)
}

func (s *SeenTrains) Len() int {
	return s.cache.Len(true)
}
