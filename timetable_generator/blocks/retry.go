// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package blocks

import (
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryingCheckpointer retries failed saves with an exponential backoff.
// Loads are passed through unchanged.
type RetryingCheckpointer struct {
	Checkpointer

	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
}

func (r RetryingCheckpointer) Save(c Checkpoint) error {
	b := backoff.NewExponentialBackOff()
	if r.InitialInterval > 0 {
		b.InitialInterval = r.InitialInterval
	}
	if r.MaxElapsedTime > 0 {
		b.MaxElapsedTime = r.MaxElapsedTime
	}

	return backoff.RetryNotify(
		func() error { return r.Checkpointer.Save(c) },
		b,
		func(err error, wait time.Duration) {
			slog.Warn("Checkpoint save failed, retrying", "error", err, "wait", wait)
		},
	)
}
