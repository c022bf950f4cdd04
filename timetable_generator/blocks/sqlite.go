// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package blocks

import (
	"context"
	"database/sql"
	"errors"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS schedules (
		schedule_key TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS start_times (
		schedule_key TEXT NOT NULL,
		position INTEGER NOT NULL,
		seconds INTEGER NOT NULL,
		PRIMARY KEY (schedule_key, position)
	)`,
	`CREATE TABLE IF NOT EXISTS block_samples (
		schedule_key TEXT NOT NULL,
		block INTEGER NOT NULL,
		position INTEGER NOT NULL,
		elapsed INTEGER NOT NULL,
		PRIMARY KEY (schedule_key, block, position)
	)`,
}

// SQLiteCheckpointer keeps the checkpoint in an SQLite database.
// Every save overwrites the previous checkpoint in a single transaction.
type SQLiteCheckpointer struct {
	DB *sql.DB
}

// OpenSQLite opens (or creates) an SQLite checkpoint database.
func OpenSQLite(path string) (*SQLiteCheckpointer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Writes are serialized anyway; a single connection also keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}
	return &SQLiteCheckpointer{DB: db}, nil
}

func (s *SQLiteCheckpointer) Close() error {
	return s.DB.Close()
}

func (s *SQLiteCheckpointer) Save(c Checkpoint) (err error) {
	ctx := context.Background()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	for _, table := range []string{"schedules", "start_times", "block_samples"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	insertSchedule, err := tx.PrepareContext(ctx, "INSERT INTO schedules (schedule_key) VALUES (?)")
	if err != nil {
		return err
	}
	defer insertSchedule.Close()

	insertStartTime, err := tx.PrepareContext(ctx,
		"INSERT INTO start_times (schedule_key, position, seconds) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer insertStartTime.Close()

	insertSample, err := tx.PrepareContext(ctx,
		"INSERT INTO block_samples (schedule_key, block, position, elapsed) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer insertSample.Close()

	for _, key := range c.Keys() {
		e := c[key]
		if _, err = insertSchedule.ExecContext(ctx, key); err != nil {
			return err
		}

		for i, seconds := range e.StartTimes {
			if _, err = insertStartTime.ExecContext(ctx, key, i, seconds); err != nil {
				return err
			}
		}

		for block, samples := range e.BlocksTimes {
			for i, elapsed := range samples {
				if _, err = insertSample.ExecContext(ctx, key, block, i, elapsed); err != nil {
					return err
				}
			}
		}
	}

	return tx.Commit()
}

func (s *SQLiteCheckpointer) Load() (Checkpoint, error) {
	c := make(Checkpoint)

	// 1. Schedules
	rows, err := s.DB.Query("SELECT schedule_key FROM schedules")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return nil, err
		}
		c[key] = &Entry{StartTimes: make([]int, 0), BlocksTimes: make(map[int][]int)}
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return nil, err
	}

	// 2. Start times
	rows, err = s.DB.Query("SELECT schedule_key, seconds FROM start_times ORDER BY schedule_key, position")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var key string
		var seconds int
		if err := rows.Scan(&key, &seconds); err != nil {
			rows.Close()
			return nil, err
		}
		if e := c[key]; e != nil {
			e.StartTimes = append(e.StartTimes, seconds)
		}
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return nil, err
	}

	// 3. Block samples
	rows, err = s.DB.Query(
		"SELECT schedule_key, block, elapsed FROM block_samples ORDER BY schedule_key, block, position")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var key string
		var block, elapsed int
		if err := rows.Scan(&key, &block, &elapsed); err != nil {
			rows.Close()
			return nil, err
		}
		if e := c[key]; e != nil {
			e.BlocksTimes[block] = append(e.BlocksTimes[block], elapsed)
		}
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return nil, err
	}

	return c, nil
}
