// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package time2

import (
	"bytes"
	"encoding/json"
	"math"
	"time"
)

// UnixTime is a point in time encoded in JSON as (possibly fractional) seconds since the epoch.
type UnixTime time.Time

func (u UnixTime) Time() time.Time {
	return time.Time(u)
}

func (u UnixTime) IsZero() bool {
	return time.Time(u).IsZero()
}

func (u UnixTime) MarshalJSON() ([]byte, error) {
	if u.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(time.Time(u).Unix())
}

func (u *UnixTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return err
	}

	whole, frac := math.Modf(seconds)
	*u = UnixTime(time.Unix(int64(whole), int64(frac*1e9)))
	return nil
}
