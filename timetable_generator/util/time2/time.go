// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package time2

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	Minute = 60
	Hour   = 60 * Minute
	Day    = 24 * Hour
)

type ErrInvalidTime string

func (e ErrInvalidTime) Error() string {
	return fmt.Sprintf("invalid time string: %q", string(e))
}

// Time is a wall-clock time of day, in seconds since midnight.
type Time int

// ParseServiceTime parses a schedule "HH:MM:SS" time, where HH may be 24 or more
// for departures after midnight of the service day. The result is folded
// into [00:00:00, 24:00:00) and days reports how many midnights were crossed.
func ParseServiceTime(s string) (t Time, days int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, 0, ErrInvalidTime(s)
	}

	var hms [3]int
	for i, part := range parts {
		hms[i], err = strconv.Atoi(part)
		if err != nil || hms[i] < 0 {
			return 0, 0, ErrInvalidTime(s)
		}
	}
	if hms[1] > 59 || hms[2] > 59 {
		return 0, 0, ErrInvalidTime(s)
	}

	total := hms[0]*Hour + hms[1]*Minute + hms[2]
	return Time(total % Day), total / Day, nil
}

// WallClock returns the time of day of t in its own location.
// No service-day correction is applied: 00:30 is always 1800, even for
// a trip which started at 23:50 of the previous day.
func WallClock(t time.Time) Time {
	h, m, s := t.Clock()
	return Time(h*Hour + m*Minute + s)
}

func (t Time) Hour() int   { return int(t) / Hour }
func (t Time) Minute() int { return int(t) % Hour / Minute }
func (t Time) Second() int { return int(t) % Minute }

// Minutes returns the number of whole minutes since midnight, ignoring seconds.
func (t Time) Minutes() int {
	return int(t) / Minute
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

func (t Time) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Time) UnmarshalText(text []byte) error {
	parsed, _, err := ParseServiceTime(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
