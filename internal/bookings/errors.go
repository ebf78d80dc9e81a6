package bookings

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrEventNotBookable  = errors.New("event is not open for booking")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrBookingExpired    = errors.New("booking hold has expired")
	ErrNotBookingOwner   = errors.New("booking belongs to another customer")
	ErrCancelAfterEvent  = errors.New("booking cannot be cancelled after the event has started")
)
