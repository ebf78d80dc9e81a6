package support

import (
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	StatusOpen       TicketStatus = "OPEN"
	StatusInProgress TicketStatus = "IN_PROGRESS"
	StatusResolved   TicketStatus = "RESOLVED"
	StatusClosed     TicketStatus = "CLOSED"
)

func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

type SupportTicket struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CustomerID uuid.UUID    `json:"customer_id" gorm:"type:uuid;not null;index"`
	BookingID  *uuid.UUID   `json:"booking_id,omitempty" gorm:"type:uuid;index"`
	Subject    string       `json:"subject" gorm:"not null;size:255"`
	Message    string       `json:"message" gorm:"not null;type:text"`
	Status     TicketStatus `json:"status" gorm:"not null;default:'OPEN';index"`
	Resolution string       `json:"resolution,omitempty" gorm:"type:text"`
	CreatedAt  time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

func (SupportTicket) TableName() string {
	return "support_tickets"
}

type CreateTicketRequest struct {
	BookingID string `json:"booking_id" binding:"omitempty,uuid"`
	Subject   string `json:"subject" binding:"required,min=3,max=255"`
	Message   string `json:"message" binding:"required,min=10,max=5000"`
}

type UpdateTicketRequest struct {
	Status     string `json:"status" binding:"required,oneof=OPEN IN_PROGRESS RESOLVED CLOSED"`
	Resolution string `json:"resolution" binding:"max=5000"`
}
