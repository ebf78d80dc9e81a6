package bookings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"eventixs/internal/events"
	"eventixs/internal/ledger"
	"eventixs/internal/shared/config"
	"eventixs/pkg/logger"

	"github.com/google/uuid"
)

// EventCatalog is the slice of the events service the booking flow needs.
type EventCatalog interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error)
}

// Notifier publishes booking lifecycle notifications. Implementations must
// not block the request path.
type Notifier interface {
	BookingConfirmed(ctx context.Context, booking *Booking)
	BookingCancelled(ctx context.Context, booking *Booking, reason string)
	BookingExpired(ctx context.Context, booking *Booking)
}

// Refunder reverses a completed payment when a confirmed booking is
// cancelled. Wired at startup to avoid a package cycle with payments.
type Refunder interface {
	RefundBooking(ctx context.Context, bookingID uuid.UUID) error
}

type Service interface {
	CreateBooking(ctx context.Context, customerID uuid.UUID, req CreateBookingRequest) (*BookingResponse, error)
	GetBooking(ctx context.Context, id, customerID uuid.UUID, isAdmin bool) (*BookingResponse, error)
	ListBookings(ctx context.Context, customerID uuid.UUID, query ListBookingsQuery) (*ListBookingsResponse, error)
	ListAllBookings(ctx context.Context, query ListBookingsQuery) (*ListBookingsResponse, error)
	UpdateBookingStatus(ctx context.Context, id, customerID uuid.UUID, isAdmin bool, req UpdateBookingStatusRequest) (*BookingResponse, error)
	CancelBooking(ctx context.Context, id, customerID uuid.UUID, isAdmin bool, reason string) (*BookingResponse, error)

	// ConfirmBooking finalizes a pending booking after a successful
	// payment. The reservation hold is committed first; if it already
	// lapsed the booking is cancelled instead.
	ConfirmBooking(ctx context.Context, id uuid.UUID) (*Booking, error)

	// CancelBookingInternal cancels without an ownership check, used by
	// the payment flow when a payment exhausts its retries.
	CancelBookingInternal(ctx context.Context, id uuid.UUID, reason string) error

	// ExpireReservation is invoked by the ledger sweeper when a hold
	// lapses before payment.
	ExpireReservation(ctx context.Context, reservationID uuid.UUID) error

	// GetBookingRecord returns the raw booking, used by the payment flow
	// to validate amounts.
	GetBookingRecord(ctx context.Context, id uuid.UUID) (*Booking, error)

	SetRefunder(refunder Refunder)
}

type service struct {
	repo     Repository
	tickets  ledger.Ledger
	catalog  EventCatalog
	notifier Notifier
	refunder Refunder
	cfg      config.BookingConfig
	log      *logger.Logger
}

func NewService(repo Repository, tickets ledger.Ledger, catalog EventCatalog, notifier Notifier, cfg config.BookingConfig) Service {
	return &service{
		repo:     repo,
		tickets:  tickets,
		catalog:  catalog,
		notifier: notifier,
		cfg:      cfg,
		log:      logger.GetDefault(),
	}
}

func (s *service) SetRefunder(refunder Refunder) {
	s.refunder = refunder
}

func (s *service) CreateBooking(ctx context.Context, customerID uuid.UUID, req CreateBookingRequest) (*BookingResponse, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event id: %w", err)
	}

	event, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsBookable(time.Now()) {
		return nil, ErrEventNotBookable
	}

	reservation, err := s.tickets.Reserve(ctx, eventID, req.Quantity)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	booking := &Booking{
		BookingRef:    newBookingRef(now),
		CustomerID:    customerID,
		EventID:       eventID,
		ReservationID: reservation.ID,
		Quantity:      req.Quantity,
		UnitPrice:     event.TicketPrice,
		TotalAmount:   roundMoney(float64(req.Quantity) * event.TicketPrice),
		Status:        StatusPending,
		ExpiresAt:     reservation.ExpiresAt,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		// Give the tickets back rather than stranding the hold until
		// the sweeper finds it.
		if relErr := s.tickets.Release(ctx, reservation.ID); relErr != nil {
			s.log.Error("failed to release reservation after booking create failure",
				"reservation_id", reservation.ID, "error", relErr)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.log.LogBookingCreated(ctx, booking.ID.String(), eventID.String(), customerID.String())

	resp := toBookingResponse(booking)
	return &resp, nil
}

func (s *service) GetBooking(ctx context.Context, id, customerID uuid.UUID, isAdmin bool) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && booking.CustomerID != customerID {
		return nil, ErrNotBookingOwner
	}

	resp := toBookingResponse(booking)
	return &resp, nil
}

func (s *service) ListBookings(ctx context.Context, customerID uuid.UUID, query ListBookingsQuery) (*ListBookingsResponse, error) {
	bookings, total, err := s.repo.ListByCustomer(ctx, customerID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toListResponse(bookings, total, query), nil
}

// ListAllBookings is the admin view across every customer.
func (s *service) ListAllBookings(ctx context.Context, query ListBookingsQuery) (*ListBookingsResponse, error) {
	bookings, total, err := s.repo.ListAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toListResponse(bookings, total, query), nil
}

func toListResponse(bookings []Booking, total int64, query ListBookingsQuery) *ListBookingsResponse {
	resp := &ListBookingsResponse{
		Bookings:   make([]BookingResponse, 0, len(bookings)),
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: total,
	}
	for i := range bookings {
		resp.Bookings = append(resp.Bookings, toBookingResponse(&bookings[i]))
	}
	return resp
}

func (s *service) UpdateBookingStatus(ctx context.Context, id, customerID uuid.UUID, isAdmin bool, req UpdateBookingStatusRequest) (*BookingResponse, error) {
	target := Status(req.Status)

	switch target {
	case StatusCancelled:
		return s.CancelBooking(ctx, id, customerID, isAdmin, req.Reason)
	case StatusConfirmed:
		// Manual confirmation is an admin escape hatch; customers
		// confirm through the payment flow.
		if !isAdmin {
			return nil, ErrInvalidTransition
		}
		booking, err := s.ConfirmBooking(ctx, id)
		if err != nil {
			return nil, err
		}
		resp := toBookingResponse(booking)
		return &resp, nil
	default:
		return nil, ErrInvalidTransition
	}
}

func (s *service) ConfirmBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case StatusConfirmed:
		return booking, nil
	case StatusCancelled:
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, StatusConfirmed)
	}

	if err := s.tickets.Commit(ctx, booking.ReservationID); err != nil {
		if errors.Is(err, ledger.ErrReservationExpired) {
			if cancelErr := s.CancelBookingInternal(ctx, id, "reservation hold expired"); cancelErr != nil {
				s.log.Error("failed to cancel booking with expired hold",
					"booking_id", id, "error", cancelErr)
			}
			return nil, ErrBookingExpired
		}
		return nil, fmt.Errorf("failed to commit reservation: %w", err)
	}

	now := time.Now()
	applied, err := s.repo.Transition(ctx, id, StatusPending, StatusConfirmed, map[string]interface{}{
		"confirmed_at": now,
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost the race; re-read and report what actually happened.
		return s.repo.GetByID(ctx, id)
	}

	booking.Status = StatusConfirmed
	booking.ConfirmedAt = &now

	s.log.LogBookingTransition(ctx, id.String(), string(StatusPending), string(StatusConfirmed))
	if s.notifier != nil {
		s.notifier.BookingConfirmed(ctx, booking)
	}
	return booking, nil
}

func (s *service) CancelBooking(ctx context.Context, id, customerID uuid.UUID, isAdmin bool, reason string) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && booking.CustomerID != customerID {
		return nil, ErrNotBookingOwner
	}

	if booking.Status == StatusCancelled {
		resp := toBookingResponse(booking)
		return &resp, nil
	}

	if booking.Status == StatusConfirmed && !s.cfg.AllowPostEventCancel {
		event, err := s.catalog.GetEvent(ctx, booking.EventID)
		if err == nil && !event.DateTime.After(time.Now()) {
			return nil, ErrCancelAfterEvent
		}
	}

	wasConfirmed := booking.Status == StatusConfirmed
	if err := s.cancel(ctx, booking, reason); err != nil {
		return nil, err
	}

	if wasConfirmed && s.refunder != nil {
		if err := s.refunder.RefundBooking(ctx, id); err != nil {
			s.log.Error("failed to refund cancelled booking", "booking_id", id, "error", err)
		}
	}

	refreshed, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toBookingResponse(refreshed)
	return &resp, nil
}

func (s *service) CancelBookingInternal(ctx context.Context, id uuid.UUID, reason string) error {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if booking.Status == StatusCancelled {
		return nil
	}
	return s.cancel(ctx, booking, reason)
}

// cancel flips the booking to CANCELLED and returns its tickets to the
// pool. The ledger release is idempotent, so a hold the sweeper already
// expired is not restored twice.
func (s *service) cancel(ctx context.Context, booking *Booking, reason string) error {
	if !booking.Status.CanTransitionTo(StatusCancelled) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, StatusCancelled)
	}

	now := time.Now()
	applied, err := s.repo.Transition(ctx, booking.ID, booking.Status, StatusCancelled, map[string]interface{}{
		"cancelled_at":  now,
		"cancel_reason": reason,
	})
	if err != nil {
		return err
	}
	if !applied {
		refreshed, err := s.repo.GetByID(ctx, booking.ID)
		if err != nil {
			return err
		}
		if refreshed.Status == StatusCancelled {
			return nil
		}
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, refreshed.Status, StatusCancelled)
	}

	if err := s.tickets.Release(ctx, booking.ReservationID); err != nil {
		s.log.Error("failed to release reservation for cancelled booking",
			"booking_id", booking.ID, "reservation_id", booking.ReservationID, "error", err)
	}

	s.log.LogBookingTransition(ctx, booking.ID.String(), string(booking.Status), string(StatusCancelled))
	if s.notifier != nil {
		s.notifier.BookingCancelled(ctx, booking, reason)
	}
	return nil
}

// ExpireReservation is the sweeper callback. The ledger has already
// expired the hold and restored inventory; only the booking record and
// the customer notification remain.
func (s *service) ExpireReservation(ctx context.Context, reservationID uuid.UUID) error {
	booking, err := s.repo.GetByReservationID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil
		}
		return err
	}
	if booking.Status != StatusPending {
		return nil
	}

	now := time.Now()
	applied, err := s.repo.Transition(ctx, booking.ID, StatusPending, StatusCancelled, map[string]interface{}{
		"cancelled_at":  now,
		"cancel_reason": "reservation hold expired",
	})
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	s.log.LogBookingTransition(ctx, booking.ID.String(), string(StatusPending), string(StatusCancelled))
	if s.notifier != nil {
		s.notifier.BookingExpired(ctx, booking)
	}
	return nil
}

func (s *service) GetBookingRecord(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func roundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}
