package bookings

import (
	"time"

	"github.com/google/uuid"
)

type BookingResponse struct {
	ID            uuid.UUID  `json:"id"`
	BookingRef    string     `json:"booking_ref"`
	EventID       uuid.UUID  `json:"event_id"`
	ReservationID uuid.UUID  `json:"reservation_id"`
	Quantity      int        `json:"quantity"`
	UnitPrice     float64    `json:"unit_price"`
	TotalAmount   float64    `json:"total_amount"`
	Status        Status     `json:"status"`
	ExpiresAt     time.Time  `json:"expires_at"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CancelReason  string     `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type ListBookingsResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalCount int64             `json:"total_count"`
}

func toBookingResponse(b *Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		BookingRef:    b.BookingRef,
		EventID:       b.EventID,
		ReservationID: b.ReservationID,
		Quantity:      b.Quantity,
		UnitPrice:     b.UnitPrice,
		TotalAmount:   b.TotalAmount,
		Status:        b.Status,
		ExpiresAt:     b.ExpiresAt,
		ConfirmedAt:   b.ConfirmedAt,
		CancelledAt:   b.CancelledAt,
		CancelReason:  b.CancelReason,
		CreatedAt:     b.CreatedAt,
	}
}
