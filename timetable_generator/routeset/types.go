// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package routeset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/util/set"
)

// Blocks is a set of block numbers. In JSON it is a list of block numbers
// and inclusive "first-last" ranges.
type Blocks struct {
	set.Set[int]
}

func BlocksOf(blocks ...int) Blocks {
	return Blocks{set.Of(blocks...)}
}

func (b Blocks) MarshalJSON() ([]byte, error) {
	return json.Marshal(set.Sorted(b.Set))
}

func (b *Blocks) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	b.Set = make(set.Set[int])
	for _, item := range items {
		var block int
		if err := json.Unmarshal(item, &block); err == nil {
			b.Add(block)
			continue
		}

		var r string
		if err := json.Unmarshal(item, &r); err != nil {
			return fmt.Errorf("invalid block: %s", item)
		}
		first, last, err := parseRange(r)
		if err != nil {
			return err
		}
		for block := first; block <= last; block++ {
			b.Add(block)
		}
	}
	return nil
}

func parseRange(s string) (first, last int, err error) {
	a, z, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid block range: %q", s)
	}

	first, err1 := strconv.Atoi(strings.TrimSpace(a))
	last, err2 := strconv.Atoi(strings.TrimSpace(z))
	if err1 != nil || err2 != nil || first > last {
		return 0, 0, fmt.Errorf("invalid block range: %q", s)
	}
	return first, last, nil
}

// Color is an RGB display color, encoded in JSON as [r, g, b].
type Color struct {
	R, G, B uint8
}

var White = Color{255, 255, 255}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]uint8{c.R, c.G, c.B})
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var rgb []int
	if err := json.Unmarshal(data, &rgb); err != nil {
		return err
	}
	if len(rgb) != 3 {
		return fmt.Errorf("color must have 3 components, got %d", len(rgb))
	}
	for _, v := range rgb {
		if v < 0 || v > 255 {
			return fmt.Errorf("color component out of range: %d", v)
		}
	}
	*c = Color{uint8(rgb[0]), uint8(rgb[1]), uint8(rgb[2])}
	return nil
}
