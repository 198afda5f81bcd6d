package service

import (
	"errors"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/room-booking-api/pkg/errors"
)

// validationMessages maps "<Struct>.<Field>.<tag>" to the message returned to clients.
var validationMessages = map[string]string{
	"CreateEventRequest.Name.required":      "Event name is required",
	"CreateEventRequest.Name.max":           "Event name must be at most 255 characters",
	"CreateEventRequest.RoomID.required":    "Room ID must be greater than 0",
	"CreateEventRequest.RoomID.gt":          "Room ID must be greater than 0",
	"CreateEventRequest.StartTime.required": "Start time must be a valid date string",
	"CreateEventRequest.EndTime.required":   "End time must be a valid date string",
	"UpdateEventRequest.Name.min":           "Event name must not be empty",
	"UpdateEventRequest.Name.max":           "Event name must be at most 255 characters",
	"UpdateEventRequest.RoomID.gt":          "Room ID must be greater than 0",
	"UpdateEventRequest.StartTime.min":      "Start time must be a valid date string",
	"UpdateEventRequest.EndTime.min":        "End time must be a valid date string",
	"CreateRoomRequest.Name.required":       "Room name is required",
	"CreateRoomRequest.Name.max":            "Room name must be at most 255 characters",
}

// validationError converts validator output into an InvalidInput error carrying the first
// field message.
func validationError(err error, fallback string) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if msg, ok := validationMessages[fe.StructNamespace()+"."+fe.Tag()]; ok {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msg)
		}
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fallback)
}

func invalidInput(message string) error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}

func notFound(message string) error {
	return appErrors.Clone(appErrors.ErrNotFound, message)
}

func conflict(message string) error {
	return appErrors.Clone(appErrors.ErrConflict, message)
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
