package dto

// CreateRoomRequest defines the payload for registering a room.
type CreateRoomRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}
