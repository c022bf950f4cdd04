// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package backoff

import (
	"context"
	"time"
)

const (
	Success = true
	Failure = false
)

// Clock abstracts the passage of time, so that loops can be tested without sleeping.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// System is the Clock backed by the time package.
var System Clock = systemClock{}

// Backoff paces a polling loop. Runs start every Period; after consecutive
// failures the wait doubles up to Period * 2^MaxBackoffExponent.
// With MaxBackoffExponent zero the loop polls at a fixed period.
type Backoff struct {
	Period             time.Duration
	Failures           uint
	MaxBackoffExponent uint
	Clock              Clock

	lastRun time.Time
	nextRun time.Time
}

func (b *Backoff) StartRun() {
	b.lastRun = b.clock().Now()
}

func (b *Backoff) EndRun(success bool) time.Time {
	if success {
		b.Failures = 0
		b.nextRun = b.lastRun.Add(b.Period)
	} else {
		b.Failures++
		backoffExponent := min(b.Failures-1, b.MaxBackoffExponent)
		b.nextRun = b.lastRun.Add(b.Period << backoffExponent)
	}
	return b.nextRun
}

// Wait blocks until the next run is due, or ctx is done.
func (b *Backoff) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d := b.nextRun.Sub(b.clock().Now())
	if d <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.clock().After(d):
		return nil
	}
}

func (b *Backoff) clock() Clock {
	if b.Clock != nil {
		return b.Clock
	}
	return System
}
