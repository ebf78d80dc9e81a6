package events

import "time"

type CreateEventRequest struct {
	Name         string    `json:"name" binding:"required,min=3,max=255"`
	Description  string    `json:"description" binding:"max=5000"`
	VenueID      string    `json:"venue_id" binding:"required,uuid"`
	DateTime     time.Time `json:"date_time" binding:"required"`
	TotalTickets int       `json:"total_tickets" binding:"required,min=1"`
	TicketPrice  float64   `json:"ticket_price" binding:"min=0"`
}

type UpdateEventRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=3,max=255"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	VenueID     *string    `json:"venue_id" binding:"omitempty,uuid"`
	DateTime    *time.Time `json:"date_time"`
	TicketPrice *float64   `json:"ticket_price" binding:"omitempty,min=0"`
}

type UpdateEventStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=DRAFT PUBLISHED CANCELLED COMPLETED"`
}

type ListEventsQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=DRAFT PUBLISHED CANCELLED COMPLETED"`
	City     string `form:"city"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
}
