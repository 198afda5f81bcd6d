package models

import (
	"encoding/json"
	"time"
)

// TimeRange is a requested [Start, End) window.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// MarshalJSON emits both bounds in TimestampLayout.
func (r TimeRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}{FormatTimestamp(r.Start), FormatTimestamp(r.End)})
}

// Availability answers whether a room is free for a window.
type Availability struct {
	Room               Room      `json:"room"`
	RequestedTimeRange TimeRange `json:"requestedTimeRange"`
	IsAvailable        bool      `json:"isAvailable"`
	ConflictingEvents  []Event   `json:"conflictingEvents"`
}
