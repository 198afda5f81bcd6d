package models

import "time"

// Booking notification types published after a successful mutation.
const (
	BookingCreated   = "booking.created"
	BookingUpdated   = "booking.updated"
	BookingCancelled = "booking.cancelled"
)

// BookingNotification is the envelope published on the notifications channel.
type BookingNotification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   Event     `json:"payload"`
}
