// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package blocks

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
)

// Entry is the checkpointed state of a single (route, schedule) pair.
type Entry struct {
	StartTimes  []int         `json:"start_times"`
	BlocksTimes map[int][]int `json:"blocks_times"`
}

// Checkpoint maps "{route}_Schedule_{index}" keys to their entries.
type Checkpoint map[string]*Entry

func (c Checkpoint) Keys() []string {
	return slices.Sorted(maps.Keys(c))
}

func (c Checkpoint) Write(w io.Writer) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(c)
}

func ReadCheckpoint(r io.Reader) (Checkpoint, error) {
	c := make(Checkpoint)
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, err
	}
	for key, e := range c {
		if e == nil {
			slog.Warn("Skipping empty checkpoint entry", "key", key)
			delete(c, key)
		} else if e.BlocksTimes == nil {
			e.BlocksTimes = make(map[int][]int)
		}
	}
	return c, nil
}

// Checkpointer persists and restores block statistics snapshots.
type Checkpointer interface {
	Save(Checkpoint) error
	Load() (Checkpoint, error)
}

// FileCheckpointer keeps the checkpoint in a JSON file. The file is replaced
// atomically on every save. A missing file loads as an empty checkpoint.
type FileCheckpointer struct {
	Path string
}

func (f FileCheckpointer) Save(c Checkpoint) (err error) {
	tempPath := getTempOutputPath(f.Path)
	defer func() {
		if err != nil {
			os.Remove(tempPath)
		}
	}()

	{
		file, err := os.Create(tempPath)
		if err != nil {
			return err
		}
		defer file.Close()

		b := bufio.NewWriter(file)
		if err := c.Write(b); err != nil {
			return err
		}
		if err := b.Flush(); err != nil {
			return err
		}
		if err := file.Sync(); err != nil {
			return err
		}
	}

	return os.Rename(tempPath, f.Path)
}

func (f FileCheckpointer) Load() (Checkpoint, error) {
	file, err := os.Open(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("No existing checkpoint found", "path", f.Path)
		return make(Checkpoint), nil
	} else if err != nil {
		return nil, err
	}
	defer file.Close()

	c, err := ReadCheckpoint(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return c, nil
}

func getTempOutputPath(path string) string {
	dir, name := filepath.Split(path)
	return fmt.Sprintf("%s.%s.tmp", dir, name)
}
