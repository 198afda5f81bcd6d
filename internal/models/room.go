package models

// Room is a bookable space. Names are unique across the directory.
type Room struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// RoomSchedule is a room together with its events ordered by start time.
type RoomSchedule struct {
	Room
	Events []Event `json:"events"`
}
