package payments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"eventixs/internal/bookings"
	"eventixs/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePaymentRepository struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*Payment
	attempts map[string]*PaymentAttempt
}

func newFakePaymentRepository() *fakePaymentRepository {
	return &fakePaymentRepository{
		payments: make(map[uuid.UUID]*Payment),
		attempts: make(map[string]*PaymentAttempt),
	}
}

func (f *fakePaymentRepository) Create(ctx context.Context, payment *Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

func (f *fakePaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	copied := *payment
	return &copied, nil
}

func (f *fakePaymentRepository) GetByGatewayRef(ctx context.Context, gatewayRef string) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, payment := range f.payments {
		if payment.GatewayRef == gatewayRef {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, ErrPaymentNotFound
}

func (f *fakePaymentRepository) RecordAttempt(ctx context.Context, attempt *PaymentAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.attempts[attempt.TransactionID]; exists {
		return errors.New("duplicate transaction id")
	}
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	copied := *attempt
	f.attempts[attempt.TransactionID] = &copied
	return nil
}

func (f *fakePaymentRepository) TransactionSeen(ctx context.Context, transactionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, seen := f.attempts[transactionID]
	return seen, nil
}

func (f *fakePaymentRepository) GetOpenByBooking(ctx context.Context, bookingID uuid.UUID) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, payment := range f.payments {
		if payment.BookingID == bookingID && payment.Status == StatusPending {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, ErrPaymentNotFound
}

func (f *fakePaymentRepository) GetCompletedByBooking(ctx context.Context, bookingID uuid.UUID) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, payment := range f.payments {
		if payment.BookingID == bookingID && payment.Status == StatusCompleted {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, ErrPaymentNotFound
}

func (f *fakePaymentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Payment
	for _, payment := range f.payments {
		if payment.BookingID == bookingID {
			out = append(out, *payment)
		}
	}
	return out, nil
}

func (f *fakePaymentRepository) Transition(ctx context.Context, id uuid.UUID, from, to Status, updates map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[id]
	if !ok || payment.Status != from {
		return false, nil
	}
	payment.Status = to
	applyUpdates(payment, updates)
	return true, nil
}

func applyUpdates(payment *Payment, updates map[string]interface{}) {
	if v, ok := updates["transaction_id"].(string); ok {
		payment.TransactionID = v
	}
	if v, ok := updates["attempts"].(int); ok {
		payment.Attempts = v
	}
	if v, ok := updates["failure_reason"].(string); ok {
		payment.FailureReason = v
	}
	if v, ok := updates["completed_at"].(time.Time); ok {
		payment.CompletedAt = &v
	}
	if v, ok := updates["refunded_at"].(time.Time); ok {
		payment.RefundedAt = &v
	}
}

type fakeGateway struct {
	mu      sync.Mutex
	charges []ChargeRequest
	refunds []string
}

func (f *fakeGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.charges = append(f.charges, req)
	return &ChargeResult{GatewayRef: fmt.Sprintf("GW-%04d", len(f.charges))}, nil
}

func (f *fakeGateway) Refund(ctx context.Context, gatewayRef string, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refunds = append(f.refunds, gatewayRef)
	return nil
}

// fakeBookings scripts the slice of the booking service the payment flow
// drives.
type fakeBookings struct {
	mu         sync.Mutex
	records    map[uuid.UUID]*bookings.Booking
	confirmErr error
	confirmed  []uuid.UUID
	cancelled  []uuid.UUID
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{records: make(map[uuid.UUID]*bookings.Booking)}
}

func (f *fakeBookings) addPending(customerID uuid.UUID, totalAmount float64) *bookings.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking := &bookings.Booking{
		ID:          uuid.New(),
		BookingRef:  fmt.Sprintf("EVX-TEST-%06d", len(f.records)+1),
		CustomerID:  customerID,
		EventID:     uuid.New(),
		Quantity:    2,
		TotalAmount: totalAmount,
		Status:      bookings.StatusPending,
	}
	f.records[booking.ID] = booking
	return booking
}

func (f *fakeBookings) GetBookingRecord(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.records[id]
	if !ok {
		return nil, bookings.ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookings) ConfirmBooking(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	booking, ok := f.records[id]
	if !ok {
		return nil, bookings.ErrBookingNotFound
	}
	booking.Status = bookings.StatusConfirmed
	f.confirmed = append(f.confirmed, id)
	copied := *booking
	return &copied, nil
}

func (f *fakeBookings) CancelBookingInternal(ctx context.Context, id uuid.UUID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.records[id]
	if !ok {
		return bookings.ErrBookingNotFound
	}
	booking.Status = bookings.StatusCancelled
	f.cancelled = append(f.cancelled, id)
	return nil
}

type paymentHarness struct {
	repo     *fakePaymentRepository
	gateway  *fakeGateway
	bookings *fakeBookings
	service  Service
}

func newPaymentHarness(t *testing.T) *paymentHarness {
	t.Helper()
	h := &paymentHarness{
		repo:     newFakePaymentRepository(),
		gateway:  &fakeGateway{},
		bookings: newFakeBookings(),
	}
	cfg := config.PaymentConfig{
		MaxRetries: 2,
		Currency:   "INR",
	}
	h.service = NewService(h.repo, h.gateway, h.bookings, cfg)
	return h
}

func (h *paymentHarness) initiatePayment(t *testing.T, booking *bookings.Booking) *PaymentResponse {
	t.Helper()
	resp, err := h.service.InitiatePayment(context.Background(), booking.CustomerID, InitiatePaymentRequest{
		BookingID: booking.ID.String(),
		Amount:    booking.TotalAmount,
		Method:    "CARD",
	})
	require.NoError(t, err)
	return resp
}

func TestInitiatePaymentRejectsAmountMismatch(t *testing.T) {
	h := newPaymentHarness(t)
	customerID := uuid.New()
	booking := h.bookings.addPending(customerID, 150.00)

	_, err := h.service.InitiatePayment(context.Background(), customerID, InitiatePaymentRequest{
		BookingID: booking.ID.String(),
		Amount:    120.00,
		Method:    "CARD",
	})
	assert.ErrorIs(t, err, ErrAmountMismatch)
	assert.Empty(t, h.gateway.charges, "no charge is opened for a mismatched amount")
}

func TestInitiatePaymentEnforcesOwnership(t *testing.T) {
	h := newPaymentHarness(t)
	booking := h.bookings.addPending(uuid.New(), 100.00)

	_, err := h.service.InitiatePayment(context.Background(), uuid.New(), InitiatePaymentRequest{
		BookingID: booking.ID.String(),
		Amount:    100.00,
	})
	assert.ErrorIs(t, err, ErrNotPaymentOwner)
}

func TestInitiatePaymentRequiresPendingBooking(t *testing.T) {
	h := newPaymentHarness(t)
	customerID := uuid.New()
	booking := h.bookings.addPending(customerID, 100.00)
	booking.Status = bookings.StatusCancelled

	_, err := h.service.InitiatePayment(context.Background(), customerID, InitiatePaymentRequest{
		BookingID: booking.ID.String(),
		Amount:    100.00,
	})
	assert.ErrorIs(t, err, ErrBookingNotPayable)
}

func TestInitiatePaymentReusesOpenAttempt(t *testing.T) {
	h := newPaymentHarness(t)
	booking := h.bookings.addPending(uuid.New(), 100.00)

	first := h.initiatePayment(t, booking)
	second := h.initiatePayment(t, booking)

	assert.Equal(t, first.ID, second.ID, "a second initiate returns the open attempt")
	assert.Len(t, h.gateway.charges, 1, "only one charge is opened")
}

func TestCallbackSuccessConfirmsBooking(t *testing.T) {
	h := newPaymentHarness(t)
	booking := h.bookings.addPending(uuid.New(), 100.00)
	payment := h.initiatePayment(t, booking)

	err := h.service.HandleGatewayCallback(context.Background(), GatewayCallbackRequest{
		GatewayRef:    payment.GatewayRef,
		TransactionID: "TXN-001",
		Status:        "SUCCESS",
	})
	require.NoError(t, err)

	stored, err := h.repo.GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Equal(t, "TXN-001", stored.TransactionID)
	assert.Equal(t, 1, stored.Attempts)
	assert.NotNil(t, stored.CompletedAt)
	assert.Equal(t, []uuid.UUID{booking.ID}, h.bookings.confirmed)
}

func TestCallbackReplayIsSilentNoop(t *testing.T) {
	h := newPaymentHarness(t)
	booking := h.bookings.addPending(uuid.New(), 100.00)
	payment := h.initiatePayment(t, booking)

	callback := GatewayCallbackRequest{
		GatewayRef:    payment.GatewayRef,
		TransactionID: "TXN-REPLAY",
		Status:        "SUCCESS",
	}
	require.NoError(t, h.service.HandleGatewayCallback(context.Background(), callback))
	require.NoError(t, h.service.HandleGatewayCallback(context.Background(), callback), "replay returns success")

	stored, err := h.repo.GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Equal(t, 1, stored.Attempts, "replay does not count as another attempt")
	assert.Len(t, h.bookings.confirmed, 1, "the booking is confirmed once")
}

func TestCallbackFailureWithinRetryBudgetStaysPending(t *testing.T) {
	h := newPaymentHarness(t)
	booking := h.bookings.addPending(uuid.New(), 100.00)
	payment := h.initiatePayment(t, booking)

	for i, txn := range []string{"TXN-F1", "TXN-F2"} {
		err := h.service.HandleGatewayCallback(context.Background(), GatewayCallbackRequest{
			GatewayRef:    payment.GatewayRef,
			TransactionID: txn,
			Status:        "FAILED",
			FailureReason: "card declined",
		})
		require.NoError(t, err)

		stored, err := h.repo.GetByID(context.Background(), payment.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, stored.Status, "attempt %d stays retryable", i+1)
		assert.Equal(t, i+1, stored.Attempts)
		assert.Equal(t, "card declined", stored.FailureReason)
	}
	assert.Empty(t, h.bookings.cancelled, "the booking survives while retries remain")
}

func TestCallbackReplayOfEarlierFailureDoesNotConsumeRetry(t *testing.T) {
	h := newPaymentHarness(t)
	booking := h.bookings.addPending(uuid.New(), 100.00)
	payment := h.initiatePayment(t, booking)

	// Two distinct failures use up the attempts while the payment row's
	// transaction id only remembers the second one.
	for _, txn := range []string{"TXN-F1", "TXN-F2"} {
		require.NoError(t, h.service.HandleGatewayCallback(context.Background(), GatewayCallbackRequest{
			GatewayRef:    payment.GatewayRef,
			TransactionID: txn,
			Status:        "FAILED",
			FailureReason: "card declined",
		}))
	}

	// An at-least-once delivery of the first outcome arrives again. It
	// was already applied, so it must not count as a third failure.
	require.NoError(t, h.service.HandleGatewayCallback(context.Background(), GatewayCallbackRequest{
		GatewayRef:    payment.GatewayRef,
		TransactionID: "TXN-F1",
		Status:        "FAILED",
		FailureReason: "card declined",
	}))

	stored, err := h.repo.GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status, "the replay must not exhaust the retry budget")
	assert.Equal(t, 2, stored.Attempts)
	assert.Empty(t, h.bookings.cancelled, "the booking stays alive")

	booking2, err := h.bookings.GetBookingRecord(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusPending, booking2.Status)
}

func TestCallbackFailureExhaustingBudgetFailsPayment(t *testing.T) {
	h := newPaymentHarness(t)
	booking := h.bookings.addPending(uuid.New(), 100.00)
	payment := h.initiatePayment(t, booking)

	for _, txn := range []string{"TXN-F1", "TXN-F2", "TXN-F3"} {
		err := h.service.HandleGatewayCallback(context.Background(), GatewayCallbackRequest{
			GatewayRef:    payment.GatewayRef,
			TransactionID: txn,
			Status:        "FAILED",
			FailureReason: "insufficient funds",
		})
		require.NoError(t, err)
	}

	stored, err := h.repo.GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, stored.Status, "the third failure exceeds two retries")
	assert.Equal(t, 3, stored.Attempts)
	assert.Equal(t, []uuid.UUID{booking.ID}, h.bookings.cancelled)
}

func TestCallbackAfterTerminalStateIsIgnored(t *testing.T) {
	h := newPaymentHarness(t)
	booking := h.bookings.addPending(uuid.New(), 100.00)
	payment := h.initiatePayment(t, booking)

	require.NoError(t, h.service.HandleGatewayCallback(context.Background(), GatewayCallbackRequest{
		GatewayRef:    payment.GatewayRef,
		TransactionID: "TXN-OK",
		Status:        "SUCCESS",
	}))

	// A late failure callback with a fresh transaction id must not undo
	// the settled payment.
	require.NoError(t, h.service.HandleGatewayCallback(context.Background(), GatewayCallbackRequest{
		GatewayRef:    payment.GatewayRef,
		TransactionID: "TXN-LATE",
		Status:        "FAILED",
	}))

	stored, err := h.repo.GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Empty(t, h.bookings.cancelled)
}

func TestCallbackUnknownGatewayRef(t *testing.T) {
	h := newPaymentHarness(t)

	err := h.service.HandleGatewayCallback(context.Background(), GatewayCallbackRequest{
		GatewayRef:    "GW-UNKNOWN",
		TransactionID: "TXN-001",
		Status:        "SUCCESS",
	})
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestCallbackSuccessOnExpiredBookingRefunds(t *testing.T) {
	h := newPaymentHarness(t)
	booking := h.bookings.addPending(uuid.New(), 100.00)
	payment := h.initiatePayment(t, booking)

	h.bookings.confirmErr = bookings.ErrBookingExpired
	err := h.service.HandleGatewayCallback(context.Background(), GatewayCallbackRequest{
		GatewayRef:    payment.GatewayRef,
		TransactionID: "TXN-LATE-PAY",
		Status:        "SUCCESS",
	})
	require.NoError(t, err)

	stored, err := h.repo.GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, stored.Status, "money goes back when the hold lapsed first")
	assert.NotNil(t, stored.RefundedAt)
	assert.Equal(t, []string{payment.GatewayRef}, h.gateway.refunds)
}

func TestRefundBookingReversesCompletedPayment(t *testing.T) {
	h := newPaymentHarness(t)
	booking := h.bookings.addPending(uuid.New(), 100.00)
	payment := h.initiatePayment(t, booking)

	require.NoError(t, h.service.HandleGatewayCallback(context.Background(), GatewayCallbackRequest{
		GatewayRef:    payment.GatewayRef,
		TransactionID: "TXN-001",
		Status:        "SUCCESS",
	}))

	require.NoError(t, h.service.RefundBooking(context.Background(), booking.ID))

	stored, err := h.repo.GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, stored.Status)
	assert.Equal(t, []string{payment.GatewayRef}, h.gateway.refunds)
}

func TestRefundBookingWithoutCompletedPayment(t *testing.T) {
	h := newPaymentHarness(t)
	booking := h.bookings.addPending(uuid.New(), 100.00)
	h.initiatePayment(t, booking)

	err := h.service.RefundBooking(context.Background(), booking.ID)
	assert.ErrorIs(t, err, ErrPaymentNotRefundable)
}
