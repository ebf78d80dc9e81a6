package ledger

import "errors"

var (
	// ErrInsufficientInventory - the event cannot satisfy the requested
	// quantity. Terminal for the attempt, never retried automatically.
	ErrInsufficientInventory = errors.New("insufficient inventory")

	// ErrInvalidQuantity - a reservation must hold at least one ticket.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrReservationNotFound - unknown reservation token.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrReservationExpired - the hold lapsed (or was released) before it
	// could be committed.
	ErrReservationExpired = errors.New("reservation expired")

	// ErrEventNotFound - the event backing the reservation does not exist.
	ErrEventNotFound = errors.New("event not found")
)
