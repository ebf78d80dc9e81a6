package events

import (
	"time"

	"github.com/google/uuid"
)

type EventResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	VenueID          uuid.UUID `json:"venue_id"`
	DateTime         time.Time `json:"date_time"`
	TotalTickets     int       `json:"total_tickets"`
	AvailableTickets int       `json:"available_tickets"`
	TicketPrice      float64   `json:"ticket_price"`
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ListEventsResponse struct {
	Events     []EventResponse `json:"events"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalCount int64           `json:"total_count"`
}

func toEventResponse(e *Event) EventResponse {
	return EventResponse{
		ID:               e.ID,
		Name:             e.Name,
		Description:      e.Description,
		VenueID:          e.VenueID,
		DateTime:         e.DateTime,
		TotalTickets:     e.TotalTickets,
		AvailableTickets: e.AvailableTickets,
		TicketPrice:      e.TicketPrice,
		Status:           e.Status,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}
