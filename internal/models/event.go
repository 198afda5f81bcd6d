package models

import (
	"encoding/json"
	"time"
)

// TimestampLayout renders instants as UTC with millisecond precision, e.g. 2024-01-15T09:00:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Event is a booking of a room over the half-open interval [StartTime, EndTime).
type Event struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	RoomID    int64     `json:"roomId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Room      *Room     `json:"room,omitempty"`
}

// EventView is the wire representation of an Event.
type EventView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	RoomID    int64  `json:"roomId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Room      *Room  `json:"room,omitempty"`
}

// View converts the event to its wire representation.
func (e Event) View() EventView {
	return EventView{
		ID:        e.ID,
		Name:      e.Name,
		RoomID:    e.RoomID,
		StartTime: FormatTimestamp(e.StartTime),
		EndTime:   FormatTimestamp(e.EndTime),
		Room:      e.Room,
	}
}

// MarshalJSON emits timestamps in TimestampLayout. Decoding uses the default time.Time parser,
// which accepts the same format.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.View())
}

// Overlaps reports whether the event intersects [start, end). Touching endpoints do not overlap.
func (e Event) Overlaps(start, end time.Time) bool {
	return e.StartTime.Before(end) && e.EndTime.After(start)
}

// ActiveAt reports whether start <= now < end.
func (e Event) ActiveAt(now time.Time) bool {
	return !e.StartTime.After(now) && e.EndTime.After(now)
}

// EventOrder selects the ordering of event listings.
type EventOrder string

const (
	// OrderByID sorts by id ascending.
	OrderByID EventOrder = "id"
	// OrderByStart sorts by start time, then id.
	OrderByStart EventOrder = "start"
	// OrderByStartAndRoom sorts by start time, then room id.
	OrderByStartAndRoom EventOrder = "start_room"
)

// EventFilter narrows an event listing. Nil bounds are ignored; all set bounds are combined with AND.
type EventFilter struct {
	RoomID    int64
	ExcludeID int64

	StartsBefore     *time.Time // start_time < t
	StartsAtOrBefore *time.Time // start_time <= t
	StartsAfter      *time.Time // start_time > t
	EndsAfter        *time.Time // end_time > t

	Limit int
	Order EventOrder
}

// OverlapFilter matches events of roomID intersecting [start, end), skipping excludeID.
func OverlapFilter(roomID int64, start, end time.Time, excludeID int64) EventFilter {
	return EventFilter{
		RoomID:       roomID,
		ExcludeID:    excludeID,
		StartsBefore: &end,
		EndsAfter:    &start,
		Order:        OrderByStart,
	}
}
