// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/backoff"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/blocks"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/match"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/metrics"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/source"
)

const DefaultSaveInterval = time.Minute

// Loop repeatedly fetches live trains, records block entries and periodically
// checkpoints the collected block statistics. Batches are processed strictly
// one after another.
type Loop struct {
	Fetcher      source.Fetcher
	Matcher      *match.Matcher
	Checkpointer blocks.Checkpointer
	Metrics      *metrics.Metrics
	Backoff      backoff.Backoff
	SaveInterval time.Duration

	// Logger defaults to slog.Default() with a "component" attribute.
	Logger *slog.Logger

	lastSave time.Time
}

// Restore loads the last checkpoint into the Store. Failures are logged and
// leave the Store untouched.
func (l *Loop) Restore() {
	c, err := l.Checkpointer.Load()
	if err != nil {
		l.logger().Error("Failed to load checkpoint", "error", err)
		return
	}

	l.Matcher.Store.Restore(c)
	l.Metrics.BlocksTracked.Set(float64(l.Matcher.Store.Blocks()))
	l.logger().Info("Checkpoint restored", "schedules", len(c), "blocks", l.Matcher.Store.Blocks())
}

// Run polls the live feed until ctx is done, and then saves one final checkpoint.
func (l *Loop) Run(ctx context.Context) {
	l.lastSave = l.now()

	for {
		if err := l.Backoff.Wait(ctx); err != nil {
			break
		}

		l.Backoff.StartRun()
		ok := l.RunOnce(ctx)
		nextTry := l.Backoff.EndRun(ok)
		if !ok {
			l.logger().Debug("Backing off", "failures", l.Backoff.Failures, "next_try", nextTry)
		}
	}

	l.logger().Info("Stopping, saving final checkpoint")
	l.Checkpoint()
}

// RunOnce processes a single batch of live trains. Returns false if the fetch failed.
func (l *Loop) RunOnce(ctx context.Context) bool {
	trains, err := l.Fetcher.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// Shutting down, not a feed failure
			return true
		}
		l.Metrics.FetchFailuresTotal.Inc()
		l.logger().Error("Failed to fetch live trains", "error", err)
		return false
	}

	var stats match.Stats
	l.Matcher.ObserveAll(trains, &stats)
	l.Metrics.ObserveStats(stats)
	l.Metrics.BlocksTracked.Set(float64(l.Matcher.Store.Blocks()))
	l.logger().Info("Live trains processed", "trains", len(trains), "stats", stats)

	if l.now().Sub(l.lastSave) >= l.saveInterval() {
		l.Checkpoint()
	}
	return true
}

// Checkpoint saves the current block statistics. Failures are logged and
// do not affect the in-memory state.
func (l *Loop) Checkpoint() {
	snapshot := l.Matcher.Store.Checkpoint(l.Matcher.Bindings)

	start := time.Now()
	err := l.Checkpointer.Save(snapshot)
	l.Metrics.ObserveCheckpoint(time.Since(start), err)
	l.lastSave = l.now()

	if err != nil {
		l.logger().Error("Failed to save checkpoint", "error", err)
	} else {
		l.logger().Info("Checkpoint saved", "schedules", len(snapshot))
	}
}

func (l *Loop) now() time.Time {
	if l.Backoff.Clock != nil {
		return l.Backoff.Clock.Now()
	}
	return time.Now()
}

func (l *Loop) saveInterval() time.Duration {
	if l.SaveInterval > 0 {
		return l.SaveInterval
	}
	return DefaultSaveInterval
}

func (l *Loop) logger() *slog.Logger {
	if l.Logger == nil {
		l.Logger = slog.Default().With("component", "ingest")
	}
	return l.Logger
}
