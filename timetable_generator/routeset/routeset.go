// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package routeset

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/util/set"
)

//go:embed wlg.json
var wellington []byte

type ErrInvalidConfig struct {
	RouteSet string
	Reason   string
}

func (e ErrInvalidConfig) Error() string {
	if e.RouteSet == "" {
		return "invalid route sets: " + e.Reason
	}
	return fmt.Sprintf("invalid route set %q: %s", e.RouteSet, e.Reason)
}

// Config is an ordered list of route sets, emitted under a common version tag.
type Config struct {
	Version   string      `json:"version"`
	RouteSets []*RouteSet `json:"route_sets"`
}

// RouteSet groups all schedules whose key contains Filter.
type RouteSet struct {
	Name     string `json:"name"`
	Filter   string `json:"filter"`
	EndDwell int    `json:"end_dwell"`

	// ExcludedBlocks are never emitted in timetables of this route set,
	// usually because they are station platforms with unreliable occupancy.
	ExcludedBlocks Blocks `json:"excluded_blocks"`

	Color Color `json:"color"`
}

func (r *RouteSet) UnmarshalJSON(data []byte) error {
	type plain RouteSet
	p := plain{Color: White}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = RouteSet(p)
	return nil
}

func (r *RouteSet) Excludes(block int) bool {
	return r.ExcludedBlocks.Has(block)
}

// Matches returns true if a schedule key belongs to this route set.
func (r *RouteSet) Matches(scheduleKey string) bool {
	return strings.Contains(scheduleKey, r.Filter)
}

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (c *Config) Validate() error {
	if !identifierRegex.MatchString(c.Version) {
		return ErrInvalidConfig{Reason: fmt.Sprintf("version %q is not a valid identifier", c.Version)}
	}
	if len(c.RouteSets) == 0 {
		return ErrInvalidConfig{Reason: "no route sets"}
	}

	names := make(set.Set[string], len(c.RouteSets))
	for _, r := range c.RouteSets {
		switch {
		case r.Name == "":
			return ErrInvalidConfig{Reason: "route set without a name"}
		case names.Has(r.Name):
			return ErrInvalidConfig{RouteSet: r.Name, Reason: "duplicate name"}
		case r.Filter == "":
			return ErrInvalidConfig{RouteSet: r.Name, Reason: "empty filter"}
		case r.EndDwell < 0:
			return ErrInvalidConfig{RouteSet: r.Name, Reason: "negative end_dwell"}
		}
		names.Add(r.Name)
	}
	return nil
}

func Load(r io.Reader) (*Config, error) {
	c := new(Config)
	if err := json.NewDecoder(r).Decode(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func LoadFromPath(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Load(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Wellington returns the built-in route sets of the Wellington map.
func Wellington() *Config {
	c, err := Load(bytes.NewReader(wellington))
	if err != nil {
		panic(fmt.Sprintf("routeset: embedded wlg.json: %v", err))
	}
	return c
}
