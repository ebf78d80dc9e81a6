package support

import (
	"context"
	"errors"
	"fmt"

	"eventixs/pkg/logger"

	"github.com/google/uuid"
)

var ErrNotTicketOwner = errors.New("ticket belongs to another customer")

type Service interface {
	CreateTicket(ctx context.Context, customerID uuid.UUID, req CreateTicketRequest) (*SupportTicket, error)
	GetTicket(ctx context.Context, id, customerID uuid.UUID, isAdmin bool) (*SupportTicket, error)
	ListMyTickets(ctx context.Context, customerID uuid.UUID) ([]SupportTicket, error)
	ListTickets(ctx context.Context, status TicketStatus) ([]SupportTicket, error)
	UpdateTicket(ctx context.Context, id uuid.UUID, req UpdateTicketRequest) (*SupportTicket, error)
}

type service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
		log:  logger.GetDefault(),
	}
}

func (s *service) CreateTicket(ctx context.Context, customerID uuid.UUID, req CreateTicketRequest) (*SupportTicket, error) {
	ticket := &SupportTicket{
		CustomerID: customerID,
		Subject:    req.Subject,
		Message:    req.Message,
		Status:     StatusOpen,
	}

	if req.BookingID != "" {
		bookingID, err := uuid.Parse(req.BookingID)
		if err != nil {
			return nil, fmt.Errorf("invalid booking id: %w", err)
		}
		ticket.BookingID = &bookingID
	}

	if err := s.repo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create support ticket: %w", err)
	}

	s.log.Info("support ticket created", "ticket_id", ticket.ID, "customer_id", customerID)
	return ticket, nil
}

func (s *service) GetTicket(ctx context.Context, id, customerID uuid.UUID, isAdmin bool) (*SupportTicket, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && ticket.CustomerID != customerID {
		return nil, ErrNotTicketOwner
	}
	return ticket, nil
}

func (s *service) ListMyTickets(ctx context.Context, customerID uuid.UUID) ([]SupportTicket, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

func (s *service) ListTickets(ctx context.Context, status TicketStatus) ([]SupportTicket, error) {
	return s.repo.ListByStatus(ctx, status)
}

func (s *service) UpdateTicket(ctx context.Context, id uuid.UUID, req UpdateTicketRequest) (*SupportTicket, error) {
	status := TicketStatus(req.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid ticket status %q", req.Status)
	}

	updates := map[string]interface{}{"status": status}
	if req.Resolution != "" {
		updates["resolution"] = req.Resolution
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	s.log.Info("support ticket updated", "ticket_id", id, "status", status)
	return s.repo.GetByID(ctx, id)
}
