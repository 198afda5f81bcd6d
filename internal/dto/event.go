package dto

import "github.com/noah-isme/room-booking-api/internal/models"

// CreateEventRequest defines the payload for booking a room.
type CreateEventRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	RoomID    int64  `json:"roomId" validate:"required,gt=0"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
}

// UpdateEventRequest carries a partial update. Nil fields are left untouched.
type UpdateEventRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=255"`
	RoomID    *int64  `json:"roomId" validate:"omitempty,gt=0"`
	StartTime *string `json:"startTime" validate:"omitempty,min=1"`
	EndTime   *string `json:"endTime" validate:"omitempty,min=1"`
}

// Empty reports whether no field was supplied.
func (r UpdateEventRequest) Empty() bool {
	return r.Name == nil && r.RoomID == nil && r.StartTime == nil && r.EndTime == nil
}

// EventCreatedResponse is returned by POST /events.
type EventCreatedResponse struct {
	models.EventView
	Message string `json:"message"`
}

// EventRangeQuery holds the optional bounds of GET /events and GET /events/export.
type EventRangeQuery struct {
	Start string
	End   string
}

// Complete reports whether both bounds were supplied.
func (q EventRangeQuery) Complete() bool {
	return q.Start != "" && q.End != ""
}

// ExportFile is a rendered event export ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
