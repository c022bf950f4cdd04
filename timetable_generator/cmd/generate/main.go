// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/blocks"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/emit"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/routeset"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/synth"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/util/time2"
)

var (
	flagCheckpoint = flag.String("checkpoint", "block_schedules.json", "path to the block statistics checkpoint")
	flagSQLite     = flag.Bool("sqlite", false, "read the checkpoint from an SQLite database instead of a JSON file")
	flagRouteSets  = flag.String("routesets", "", "path to route set configuration (default: built-in Wellington route sets)")
	flagOutput     = flag.String("output", ".", "directory to write the timetable header to")
	flagJSON       = flag.Bool("json", false, "also dump the timetable as JSON")
	flagReadable   = flag.Bool("readable", false, "dump JSON in human-readable format")
	flagAt         = flag.String("at", "", "if set (HH:MM:SS), print the block occupied by every departure at this time")
	flagVerbose    = flag.Bool("verbose", false, "show DEBUG logging")
)

func main() {
	flag.Parse()
	if *flagVerbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg := routeset.Wellington()
	if *flagRouteSets != "" {
		var err error
		cfg, err = routeset.LoadFromPath(*flagRouteSets)
		if err != nil {
			log.Fatal(err)
		}
	}

	slog.Info("Loading checkpoint", "path", *flagCheckpoint)
	checkpoint, err := loadCheckpoint()
	if err != nil {
		log.Fatal(err)
	}

	table, err := emit.Build(checkpoint, cfg)
	if err != nil {
		log.Fatal(err)
	}
	for _, rs := range cfg.RouteSets {
		slog.Info("Generated routes", "route_set", rs.Name, "routes", table.RouteSetCounts()[rs.Name])
	}
	for _, r := range table.Routes {
		logTrace(r)
	}

	headerPath := filepath.Join(*flagOutput, emit.HeaderFileName(table.Version))
	slog.Debug("Dumping header", "path", headerPath)
	if err := table.DumpHeaderFile(headerPath); err != nil {
		log.Fatalf("%s: %v", headerPath, err)
	}

	if *flagJSON {
		jsonPath := filepath.Join(*flagOutput, table.Version+"_Timetable.json")
		slog.Debug("Dumping JSON", "path", jsonPath)
		if err := table.DumpJSONFile(jsonPath, *flagReadable); err != nil {
			log.Fatalf("%s: %v", jsonPath, err)
		}
	}

	slog.Info(
		"Timetable generated",
		"path", headerPath,
		"routes", len(table.Routes),
		"size", fmt.Sprintf("~%.2f KiB", float64(table.Size())/1024),
	)

	if *flagAt != "" {
		if err := printOccupancy(table, *flagAt); err != nil {
			log.Fatal(err)
		}
	}
}

func loadCheckpoint() (blocks.Checkpoint, error) {
	if !*flagSQLite {
		return blocks.FileCheckpointer{Path: *flagCheckpoint}.Load()
	}

	db, err := blocks.OpenSQLite(*flagCheckpoint)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.Load()
}

func logTrace(r *emit.Route) {
	for _, step := range r.Synthesized().Trace {
		if step.Action == synth.Kept {
			continue
		}
		slog.Debug(
			"Timetable entry adjusted",
			"route", r.Key,
			"block", step.Block,
			"action", step.Action,
			"raw", step.Raw,
			"time", step.Time,
		)
	}
}

// printOccupancy prints the block of every visible train at a given time of day,
// the way the display would show it.
func printOccupancy(table *emit.Table, at string) error {
	now, _, err := time2.ParseServiceTime(at)
	if err != nil {
		return fmt.Errorf("-at: %w", err)
	}

	for _, r := range table.Routes {
		t := r.Synthesized()
		for _, start := range r.StartTimes {
			elapsed := synth.Elapsed(time2.Time(start), now)
			if t.Visible(elapsed) {
				fmt.Fprintf(os.Stdout, "%s\t%s\tblock %d\n", r.Key, time2.Time(start), t.BlockAt(elapsed))
			}
		}
	}
	return nil
}
