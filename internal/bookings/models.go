package bookings

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	BookingRef    string     `json:"booking_ref" gorm:"not null;uniqueIndex;size:32"`
	CustomerID    uuid.UUID  `json:"customer_id" gorm:"type:uuid;not null;index"`
	EventID       uuid.UUID  `json:"event_id" gorm:"type:uuid;not null;index"`
	ReservationID uuid.UUID  `json:"reservation_id" gorm:"type:uuid;not null"`
	Quantity      int        `json:"quantity" gorm:"not null;check:quantity > 0"`
	UnitPrice     float64    `json:"unit_price" gorm:"not null"`
	TotalAmount   float64    `json:"total_amount" gorm:"not null"`
	Status        Status     `json:"status" gorm:"not null;default:'PENDING';index"`
	ExpiresAt     time.Time  `json:"expires_at" gorm:"not null"`
	ConfirmedAt   *time.Time `json:"confirmed_at"`
	CancelledAt   *time.Time `json:"cancelled_at"`
	CancelReason  string     `json:"cancel_reason,omitempty" gorm:"size:255"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Booking) TableName() string {
	return "bookings"
}

// newBookingRef builds a human-readable reference like EVX-20260828-4F9A2C.
func newBookingRef(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("EVX-%s-%s", now.Format("20060102"), suffix)
}
