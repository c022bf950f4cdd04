// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package time2

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServiceTime(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		days int
	}{
		{"regular", "07:05:30", "07:05:30", 0},
		{"single digit hour", "7:05:00", "07:05:00", 0},
		{"past midnight", "25:10:00", "01:10:00", 1},
		{"exactly midnight", "24:00:00", "00:00:00", 1},
		{"two days", "48:00:01", "00:00:01", 2},
		{"last second", "23:59:59", "23:59:59", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, days, err := ParseServiceTime(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, tt.days, days)
		})
	}
}

func TestParseServiceTimeInvalid(t *testing.T) {
	for _, in := range []string{"", "12:00", "12:00:00:00", "aa:00:00", "12:60:00", "12:00:-1"} {
		_, _, err := ParseServiceTime(in)
		assert.ErrorIs(t, err, ErrInvalidTime(in), "input %q", in)
	}
}

func TestTimeComponents(t *testing.T) {
	tm := Time(1*Hour + 10*Minute + 5)
	assert.Equal(t, 1, tm.Hour())
	assert.Equal(t, 10, tm.Minute())
	assert.Equal(t, 5, tm.Second())
	assert.Equal(t, 70, tm.Minutes())
}

func TestWallClockIgnoresDate(t *testing.T) {
	a := time.Date(2025, 8, 17, 0, 30, 15, 0, time.UTC)
	b := a.AddDate(0, 0, 3)
	assert.Equal(t, Time(30*Minute+15), WallClock(a))
	assert.Equal(t, WallClock(a), WallClock(b))
}

func TestUnixTimeJSON(t *testing.T) {
	var v struct {
		TS UnixTime `json:"timestamp"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"timestamp": 1755400000}`), &v))
	assert.Equal(t, int64(1755400000), v.TS.Time().Unix())

	require.NoError(t, json.Unmarshal([]byte(`{"timestamp": 1755400000.75}`), &v))
	assert.Equal(t, int64(1755400000), v.TS.Time().Unix())
	assert.Equal(t, 750*time.Millisecond, time.Duration(v.TS.Time().Nanosecond()))

	v.TS = UnixTime{}
	require.NoError(t, json.Unmarshal([]byte(`{"timestamp": null}`), &v))
	assert.True(t, v.TS.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"timestamp": "soon"}`), &v))
}
