package events

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name             string    `json:"name" gorm:"not null;size:255"`
	Description      string    `json:"description" gorm:"type:text"`
	VenueID          uuid.UUID `json:"venue_id" gorm:"type:uuid;not null;index"`
	DateTime         time.Time `json:"date_time" gorm:"not null;index"`
	TotalTickets     int       `json:"total_tickets" gorm:"not null;check:total_tickets > 0"`
	AvailableTickets int       `json:"available_tickets" gorm:"not null"`
	TicketPrice      float64   `json:"ticket_price" gorm:"not null;check:ticket_price >= 0"`
	Status           Status    `json:"status" gorm:"not null;default:'DRAFT';index"`
	CreatedBy        uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Event) TableName() string {
	return "events"
}

// IsBookable reports whether new bookings may be taken for the event.
func (e *Event) IsBookable(now time.Time) bool {
	return e.Status == StatusPublished && e.DateTime.After(now)
}
