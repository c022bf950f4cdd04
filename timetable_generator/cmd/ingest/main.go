// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/backoff"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/blocks"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/ingest"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/match"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/metrics"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/schedules"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/source"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/util/secret"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/util/time2"
)

const defaultRoutes = "JVL__0,JVL__1,MEL__0,MEL__1,WRL__0,WRL__1,HVL__0,HVL__1,KPL__0,KPL__1"

var (
	flagGTFS               = flag.String("gtfs", "stop_times.txt", "path to GTFS Schedules feed (directory, zip or stop_times.txt)")
	flagRoutes             = flag.String("routes", defaultRoutes, "comma-separated route tokens to derive schedules for")
	flagDayFilter          = flag.String("day-filter", "MTuWThF,20250817", "comma-separated tokens every considered trip_id must contain")
	flagFeed               = flag.String("feed", source.DefaultTrackedTrainsURL, "URL of the live train feed")
	flagFeedFormat         = flag.String("feed-format", "json", "live feed format: json or gtfsrt")
	flagDumpFeed           = flag.String("dump-feed", "", "if set, write a human-readable copy of every fetched GTFS-Realtime feed to this path")
	flagTimezone           = flag.String("timezone", time2.DefaultTimezone, "timezone of wall-clock times of live observations")
	flagPeriod             = flag.Duration("period", 5*time.Second, "how often to fetch live trains")
	flagMaxBackoffExponent = flag.Uint("max-backoff-exponent", 0, "when non-zero, double the fetch period after consecutive failures, at most 2^N times")
	flagCheckpoint         = flag.String("checkpoint", "block_schedules.json", "path to the block statistics checkpoint")
	flagSQLite             = flag.Bool("sqlite", false, "store checkpoints in an SQLite database instead of a JSON file")
	flagSaveInterval       = flag.Duration("save-interval", 2*time.Minute, "how often to checkpoint block statistics")
	flagSeenTTL            = flag.Duration("seen-ttl", time.Hour, "forget trains absent from the feed for this long")
	flagMetricsAddr        = flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address")
	flagVerbose            = flag.Bool("verbose", false, "show DEBUG logging")
)

func main() {
	flag.Parse()
	if *flagVerbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	apikey, err := secret.Optional("LTM_API_KEY")
	if err != nil {
		log.Fatal(err)
	}

	location, err := time2.LoadLocation(*flagTimezone)
	if err != nil {
		log.Fatal(err)
	}

	fetcher, err := newFetcher(apikey)
	if err != nil {
		log.Fatal(err)
	}

	checkpointer, closeCheckpointer, err := newCheckpointer()
	if err != nil {
		log.Fatal(err)
	}
	defer closeCheckpointer()

	slog.Info("Loading static schedules")
	table, err := schedules.LoadStopTimesFromPath(*flagGTFS)
	if err != nil {
		log.Fatal(err)
	}

	bindings := schedules.NewBindings()
	dayFilter := splitList(*flagDayFilter)
	for _, route := range splitList(*flagRoutes) {
		derived, err := bindings.Derive(route, dayFilter, table)
		if err != nil {
			log.Fatal(err)
		}
		slog.Info("Derived schedules", "route", route, "schedules", len(derived))
		for _, s := range derived {
			slog.Debug(
				"Schedule",
				"key", s.Key,
				"signature", s.Signature,
				"start_times", s.StartTimes,
				"trips", s.TripIDs,
			)
		}
	}
	slog.Info("Bound trips", "trips", bindings.Len())

	m := metrics.New()
	if *flagMetricsAddr != "" {
		go serveMetrics(m)
	}

	store := blocks.NewStore()
	loop := &ingest.Loop{
		Fetcher: fetcher,
		Matcher: &match.Matcher{
			Bindings: bindings,
			Store:    store,
			Seen:     match.NewSeenTrains(match.DefaultSeenTrainsSize, *flagSeenTTL),
			Location: location,
		},
		Checkpointer: blocks.RetryingCheckpointer{
			Checkpointer:   checkpointer,
			MaxElapsedTime: *flagPeriod,
		},
		Metrics:      m,
		Backoff:      backoff.Backoff{Period: *flagPeriod, MaxBackoffExponent: *flagMaxBackoffExponent},
		SaveInterval: *flagSaveInterval,
	}
	loop.Restore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting continuous monitoring", "feed", *flagFeed, "period", *flagPeriod)
	loop.Run(ctx)

	if *flagVerbose {
		if err := store.WriteSummary(os.Stderr); err != nil {
			slog.Error("Failed to print block summary", "error", err)
		}
	}
}

func newFetcher(apikey string) (source.Fetcher, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	switch *flagFeedFormat {
	case "json":
		return &source.JSONFetcher{URL: *flagFeed, APIKey: apikey, Client: client}, nil
	case "gtfsrt":
		return &source.GTFSRealtimeFetcher{URL: *flagFeed, APIKey: apikey, Client: client, DumpPath: *flagDumpFeed}, nil
	default:
		return nil, errors.New("invalid -feed-format: " + *flagFeedFormat)
	}
}

func newCheckpointer() (blocks.Checkpointer, func(), error) {
	if !*flagSQLite {
		return blocks.FileCheckpointer{Path: *flagCheckpoint}, func() {}, nil
	}

	db, err := blocks.OpenSQLite(*flagCheckpoint)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close checkpoint database", "error", err)
		}
	}, nil
}

func serveMetrics(m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	slog.Info("Serving metrics", "addr", *flagMetricsAddr)
	err := http.ListenAndServe(*flagMetricsAddr, mux)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Metrics server failed", "error", err)
	}
}

func splitList(s string) []string {
	items := make([]string, 0)
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
