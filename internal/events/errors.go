package events

import "errors"

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrInvalidStatus      = errors.New("invalid event status transition")
	ErrCapacityImmutable  = errors.New("total tickets cannot be changed after creation")
	ErrEventHasBookings   = errors.New("event has active bookings and cannot be deleted")
	ErrEventDateInPast    = errors.New("event date must be in the future")
)
