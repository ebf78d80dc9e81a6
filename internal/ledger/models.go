package ledger

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus tracks a hold through its lifecycle
type ReservationStatus string

const (
	// StatusHeld - inventory is decremented but the hold is not yet permanent
	StatusHeld ReservationStatus = "HELD"
	// StatusCommitted - the deduction is permanent (booking confirmed)
	StatusCommitted ReservationStatus = "COMMITTED"
	// StatusReleased - inventory returned to the pool
	StatusReleased ReservationStatus = "RELEASED"
	// StatusExpired - hold lapsed before payment; inventory returned
	StatusExpired ReservationStatus = "EXPIRED"
)

// IsValid checks if the reservation status is valid
func (s ReservationStatus) IsValid() bool {
	switch s {
	case StatusHeld, StatusCommitted, StatusReleased, StatusExpired:
		return true
	}
	return false
}

// String returns the string representation of ReservationStatus
func (s ReservationStatus) String() string {
	return string(s)
}

// IsTerminal reports whether inventory for this reservation has already
// been returned to the pool.
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusReleased || s == StatusExpired
}

// Reservation is a hold of Quantity tickets against one event. Its ID is
// the reservation token handed to the booking that owns the hold.
type Reservation struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID   uuid.UUID         `gorm:"type:uuid;index;not null" json:"event_id"`
	Quantity  int               `gorm:"not null;check:quantity > 0" json:"quantity"`
	Status    ReservationStatus `gorm:"type:varchar(20);default:'HELD'" json:"status"`
	ExpiresAt time.Time         `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// TableName sets the table name for Reservation
func (Reservation) TableName() string {
	return "reservations"
}

// IsHeld reports whether the reservation still holds inventory pending
// commit or release.
func (r *Reservation) IsHeld() bool {
	return r.Status == StatusHeld
}

// IsLapsed reports whether a held reservation has outlived its window.
func (r *Reservation) IsLapsed(now time.Time) bool {
	return r.Status == StatusHeld && now.After(r.ExpiresAt)
}
