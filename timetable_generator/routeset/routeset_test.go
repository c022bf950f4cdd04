// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package routeset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWellington(t *testing.T) {
	c := Wellington()

	assert.Equal(t, "WLG_V1_0_0", c.Version)
	names := make([]string, len(c.RouteSets))
	for i, r := range c.RouteSets {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"JVL", "HVL", "KPL", "MEL", "WRL"}, names)

	hvl := c.RouteSets[1]
	assert.Equal(t, 60, hvl.EndDwell)
	assert.Equal(t, Color{255, 96, 0}, hvl.Color)
	assert.True(t, hvl.Excludes(162))
	assert.True(t, hvl.Excludes(193))
	assert.True(t, hvl.Excludes(233))
	assert.False(t, hvl.Excludes(234))
	assert.False(t, hvl.Excludes(105))
	assert.Len(t, hvl.ExcludedBlocks.Set, 6+41) // 230 is within 193-233

	kpl := c.RouteSets[2]
	assert.True(t, kpl.Excludes(116))
	assert.True(t, kpl.Excludes(191))
	assert.False(t, kpl.Excludes(192))
}

func TestMatches(t *testing.T) {
	r := &RouteSet{Name: "JVL", Filter: "JVL"}
	assert.True(t, r.Matches("JVL__0__Schedule_3"))
	assert.False(t, r.Matches("HVL__1__Schedule_0"))
}

func TestDefaultColor(t *testing.T) {
	c, err := Load(strings.NewReader(`{"version": "X", "route_sets": [{"name": "A", "filter": "A", "end_dwell": 5}]}`))
	require.NoError(t, err)
	assert.Equal(t, White, c.RouteSets[0].Color)
	assert.False(t, c.RouteSets[0].Excludes(100))
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		reason  string
	}{
		{
			"bad version",
			`{"version": "1.0", "route_sets": [{"name": "A", "filter": "A"}]}`,
			`version "1.0" is not a valid identifier`,
		},
		{
			"no route sets",
			`{"version": "V", "route_sets": []}`,
			"no route sets",
		},
		{
			"duplicate",
			`{"version": "V", "route_sets": [{"name": "A", "filter": "A"}, {"name": "A", "filter": "B"}]}`,
			"duplicate name",
		},
		{
			"empty filter",
			`{"version": "V", "route_sets": [{"name": "A"}]}`,
			"empty filter",
		},
		{
			"negative dwell",
			`{"version": "V", "route_sets": [{"name": "A", "filter": "A", "end_dwell": -1}]}`,
			"negative end_dwell",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.content))

			var invalid ErrInvalidConfig
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.reason, invalid.Reason)
		})
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"short color", `{"name": "A", "filter": "A", "color": [1, 2]}`},
		{"color out of range", `{"name": "A", "filter": "A", "color": [1, 2, 256]}`},
		{"backwards range", `{"name": "A", "filter": "A", "excluded_blocks": ["200-100"]}`},
		{"not a range", `{"name": "A", "filter": "A", "excluded_blocks": ["abc"]}`},
		{"bool block", `{"name": "A", "filter": "A", "excluded_blocks": [true]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r RouteSet
			assert.Error(t, json.Unmarshal([]byte(tt.content), &r))
		})
	}
}

func TestBlocksJSON(t *testing.T) {
	data, err := json.Marshal(BlocksOf(105, 101, 103))
	require.NoError(t, err)
	assert.JSONEq(t, "[101, 103, 105]", string(data))

	var b Blocks
	require.NoError(t, json.Unmarshal([]byte(`[1, "3-5", " 9 - 9 "]`), &b))
	assert.Equal(t, BlocksOf(1, 3, 4, 5, 9), b)
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.json")
	require.NoError(t, os.WriteFile(path, wellington, 0o644))

	c, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, Wellington(), c)

	_, err = LoadFromPath(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
