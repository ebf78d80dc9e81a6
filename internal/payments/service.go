package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventixs/internal/bookings"
	"eventixs/internal/shared/config"
	"eventixs/pkg/logger"

	"github.com/google/uuid"
)

// BookingFinalizer is the slice of the bookings service the payment flow
// drives: amount lookups, confirmation on success, cancellation when the
// retry budget runs out.
type BookingFinalizer interface {
	GetBookingRecord(ctx context.Context, id uuid.UUID) (*bookings.Booking, error)
	ConfirmBooking(ctx context.Context, id uuid.UUID) (*bookings.Booking, error)
	CancelBookingInternal(ctx context.Context, id uuid.UUID, reason string) error
}

type Service interface {
	InitiatePayment(ctx context.Context, customerID uuid.UUID, req InitiatePaymentRequest) (*PaymentResponse, error)

	// HandleGatewayCallback correlates an asynchronous gateway outcome
	// with its payment. Replayed callbacks are absorbed silently.
	HandleGatewayCallback(ctx context.Context, req GatewayCallbackRequest) error

	GetPayment(ctx context.Context, id, customerID uuid.UUID, isAdmin bool) (*PaymentResponse, error)
	ListBookingPayments(ctx context.Context, bookingID, customerID uuid.UUID, isAdmin bool) ([]PaymentResponse, error)

	// RefundBooking reverses the completed payment for a booking. It
	// satisfies the refund hook the bookings service is wired with.
	RefundBooking(ctx context.Context, bookingID uuid.UUID) error
}

type service struct {
	repo    Repository
	gateway Gateway
	booking BookingFinalizer
	cfg     config.PaymentConfig
	log     *logger.Logger
}

func NewService(repo Repository, gateway Gateway, booking BookingFinalizer, cfg config.PaymentConfig) Service {
	return &service{
		repo:    repo,
		gateway: gateway,
		booking: booking,
		cfg:     cfg,
		log:     logger.GetDefault(),
	}
}

func (s *service) InitiatePayment(ctx context.Context, customerID uuid.UUID, req InitiatePaymentRequest) (*PaymentResponse, error) {
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking id: %w", err)
	}

	booking, err := s.booking.GetBookingRecord(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != customerID {
		return nil, ErrNotPaymentOwner
	}
	if booking.Status != bookings.StatusPending {
		return nil, ErrBookingNotPayable
	}

	// The client echoes the total it showed the customer; the booking's
	// server-computed amount is authoritative.
	if req.Amount != booking.TotalAmount {
		return nil, fmt.Errorf("%w: got %.2f, booking total is %.2f",
			ErrAmountMismatch, req.Amount, booking.TotalAmount)
	}

	// Reuse an open attempt instead of opening a second charge.
	if existing, err := s.repo.GetOpenByBooking(ctx, bookingID); err == nil {
		resp := toPaymentResponse(existing)
		return &resp, nil
	} else if !errors.Is(err, ErrPaymentNotFound) {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = "CARD"
	}

	charge, err := s.gateway.Charge(ctx, ChargeRequest{
		BookingRef:  booking.BookingRef,
		Amount:      booking.TotalAmount,
		Currency:    s.cfg.Currency,
		Method:      method,
		Phone:       req.Phone,
		CallbackURL: s.cfg.CallbackURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open charge: %w", err)
	}

	payment := &Payment{
		BookingID:  bookingID,
		CustomerID: customerID,
		Amount:     booking.TotalAmount,
		Currency:   s.cfg.Currency,
		Method:     method,
		Status:     StatusPending,
		GatewayRef: charge.GatewayRef,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	s.log.Info("payment initiated",
		"payment_id", payment.ID, "booking_id", bookingID, "gateway_ref", charge.GatewayRef)

	resp := toPaymentResponse(payment)
	return &resp, nil
}

func (s *service) HandleGatewayCallback(ctx context.Context, req GatewayCallbackRequest) error {
	// Dedup first, against the full attempt history: the payment row only
	// carries the latest transaction id, so a replay of an earlier
	// settlement must be caught here or it would count as a fresh outcome.
	seen, err := s.repo.TransactionSeen(ctx, req.TransactionID)
	if err != nil {
		return err
	}
	if seen {
		s.log.LogDuplicateTransaction(ctx, req.TransactionID)
		return nil
	}

	payment, err := s.repo.GetByGatewayRef(ctx, req.GatewayRef)
	if err != nil {
		return err
	}
	if payment.Status.IsTerminal() {
		s.log.Info("callback for settled payment ignored",
			"payment_id", payment.ID, "status", payment.Status, "transaction_id", req.TransactionID)
		return nil
	}

	if req.Status == "SUCCESS" {
		return s.settleSuccess(ctx, payment, req.TransactionID)
	}
	return s.settleFailure(ctx, payment, req.TransactionID, req.FailureReason)
}

func (s *service) settleSuccess(ctx context.Context, payment *Payment, transactionID string) error {
	now := time.Now()
	applied, err := s.repo.Transition(ctx, payment.ID, StatusPending, StatusCompleted, map[string]interface{}{
		"transaction_id": transactionID,
		"completed_at":   now,
		"attempts":       payment.Attempts + 1,
	})
	if err != nil {
		return err
	}
	if !applied {
		// A concurrent callback settled it first.
		return nil
	}
	s.recordAttempt(ctx, payment.ID, transactionID, StatusCompleted, "")

	s.log.LogPaymentOutcome(ctx, payment.ID.String(), payment.BookingID.String(),
		string(StatusCompleted), transactionID)

	_, err = s.booking.ConfirmBooking(ctx, payment.BookingID)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingExpired) {
			// Paid for a hold that lapsed. Money goes back, tickets
			// already went back when the hold expired.
			return s.refundPayment(ctx, payment.ID, "reservation hold expired before confirmation")
		}
		return fmt.Errorf("failed to confirm booking %s: %w", payment.BookingID, err)
	}
	return nil
}

func (s *service) settleFailure(ctx context.Context, payment *Payment, transactionID, reason string) error {
	attempts := payment.Attempts + 1

	if attempts <= s.cfg.MaxRetries {
		applied, err := s.repo.Transition(ctx, payment.ID, StatusPending, StatusPending, map[string]interface{}{
			"transaction_id": transactionID,
			"attempts":       attempts,
			"failure_reason": reason,
		})
		if err != nil {
			return err
		}
		if applied {
			s.recordAttempt(ctx, payment.ID, transactionID, StatusFailed, reason)
			s.log.Info("payment attempt failed, retries remain",
				"payment_id", payment.ID, "booking_id", payment.BookingID,
				"attempts", attempts, "max_retries", s.cfg.MaxRetries, "reason", reason)
		}
		return nil
	}

	applied, err := s.repo.Transition(ctx, payment.ID, StatusPending, StatusFailed, map[string]interface{}{
		"transaction_id": transactionID,
		"attempts":       attempts,
		"failure_reason": reason,
	})
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}
	s.recordAttempt(ctx, payment.ID, transactionID, StatusFailed, reason)

	s.log.LogPaymentOutcome(ctx, payment.ID.String(), payment.BookingID.String(),
		string(StatusFailed), transactionID)

	if err := s.booking.CancelBookingInternal(ctx, payment.BookingID, "payment failed"); err != nil {
		return fmt.Errorf("failed to cancel booking %s after payment failure: %w", payment.BookingID, err)
	}
	return nil
}

// recordAttempt writes the settlement to the attempt history. A failed
// insert is logged rather than surfaced: the status transition has
// already been applied under its own CAS guard.
func (s *service) recordAttempt(ctx context.Context, paymentID uuid.UUID, transactionID string, outcome Status, reason string) {
	err := s.repo.RecordAttempt(ctx, &PaymentAttempt{
		PaymentID:     paymentID,
		TransactionID: transactionID,
		Outcome:       outcome,
		FailureReason: reason,
	})
	if err != nil {
		s.log.Error("failed to record payment attempt",
			"payment_id", paymentID, "transaction_id", transactionID, "error", err)
	}
}

func (s *service) GetPayment(ctx context.Context, id, customerID uuid.UUID, isAdmin bool) (*PaymentResponse, error) {
	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && payment.CustomerID != customerID {
		return nil, ErrNotPaymentOwner
	}

	resp := toPaymentResponse(payment)
	return &resp, nil
}

func (s *service) ListBookingPayments(ctx context.Context, bookingID, customerID uuid.UUID, isAdmin bool) ([]PaymentResponse, error) {
	booking, err := s.booking.GetBookingRecord(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && booking.CustomerID != customerID {
		return nil, ErrNotPaymentOwner
	}

	list, err := s.repo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, 0, len(list))
	for i := range list {
		responses = append(responses, toPaymentResponse(&list[i]))
	}
	return responses, nil
}

func (s *service) RefundBooking(ctx context.Context, bookingID uuid.UUID) error {
	payment, err := s.repo.GetCompletedByBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			return ErrPaymentNotRefundable
		}
		return err
	}
	return s.refundPayment(ctx, payment.ID, "booking cancelled")
}

func (s *service) refundPayment(ctx context.Context, paymentID uuid.UUID, reason string) error {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment.Status == StatusRefunded {
		return nil
	}
	if payment.Status != StatusCompleted {
		return ErrPaymentNotRefundable
	}

	now := time.Now()
	applied, err := s.repo.Transition(ctx, paymentID, StatusCompleted, StatusRefunded, map[string]interface{}{
		"refunded_at":    now,
		"failure_reason": reason,
	})
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	if err := s.gateway.Refund(ctx, payment.GatewayRef, payment.Amount); err != nil {
		// Recorded locally either way; the gateway reversal is
		// re-driven manually from the logs.
		s.log.Error("gateway refund failed",
			"payment_id", paymentID, "gateway_ref", payment.GatewayRef, "error", err)
	}

	s.log.LogPaymentOutcome(ctx, payment.ID.String(), payment.BookingID.String(),
		string(StatusRefunded), payment.TransactionID)
	return nil
}
