// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package source

import (
	"bytes"
	"encoding/json"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/util/time2"
)

// TrackedTrain is a single train reported by the live feed.
type TrackedTrain struct {
	TrainID      TrainID  `json:"trainId"`
	TripID       string   `json:"tripId"`
	CurrentBlock int      `json:"currentBlock"`
	Position     Position `json:"position"`
}

type Position struct {
	Timestamp time2.UnixTime `json:"timestamp"`
}

// Complete returns true if the train carries a trip, a block and a position timestamp.
// Block 0 is used by the display for trains entering or leaving the map
// and is treated as missing, same as any other non-positive block.
func (t *TrackedTrain) Complete() bool {
	return t.TripID != "" && t.CurrentBlock > 0 && !t.Position.Timestamp.IsZero()
}

// TrainID is the identifier of a physical train. The feed may encode it
// either as a JSON string or a number.
type TrainID string

func (id *TrainID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TrainID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = TrainID(n.String())
	return nil
}
