package bookings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eventixs/internal/events"
	"eventixs/internal/ledger"
	"eventixs/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*Booking
	failNext error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{bookings: make(map[uuid.UUID]*Booking)}
}

func (f *fakeRepository) Create(ctx context.Context, booking *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	copied := *booking
	f.bookings[booking.ID] = &copied
	return nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeRepository) GetByReservationID(ctx context.Context, reservationID uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, booking := range f.bookings {
		if booking.ReservationID == reservationID {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (f *fakeRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, query ListBookingsQuery) ([]Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, booking := range f.bookings {
		if booking.CustomerID == customerID {
			out = append(out, *booking)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) ListAll(ctx context.Context, query ListBookingsQuery) ([]Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, booking := range f.bookings {
		out = append(out, *booking)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) Transition(ctx context.Context, id uuid.UUID, from, to Status, updates map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok || booking.Status != from {
		return false, nil
	}
	booking.Status = to
	if t, ok := updates["confirmed_at"].(time.Time); ok {
		booking.ConfirmedAt = &t
	}
	if t, ok := updates["cancelled_at"].(time.Time); ok {
		booking.CancelledAt = &t
	}
	if reason, ok := updates["cancel_reason"].(string); ok {
		booking.CancelReason = reason
	}
	return true, nil
}

// fakeLedger records calls and lets tests script commit failures.
type fakeLedger struct {
	mu        sync.Mutex
	held      map[uuid.UUID]int
	released  []uuid.UUID
	committed []uuid.UUID
	holdTTL   time.Duration

	reserveErr error
	commitErr  error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{held: make(map[uuid.UUID]int), holdTTL: 10 * time.Minute}
}

func (f *fakeLedger) Reserve(ctx context.Context, eventID uuid.UUID, quantity int) (*ledger.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reserveErr != nil {
		return nil, f.reserveErr
	}
	res := &ledger.Reservation{
		ID:        uuid.New(),
		EventID:   eventID,
		Quantity:  quantity,
		Status:    ledger.StatusHeld,
		ExpiresAt: time.Now().Add(f.holdTTL),
	}
	f.held[res.ID] = quantity
	return res, nil
}

func (f *fakeLedger) Commit(ctx context.Context, token uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = append(f.committed, token)
	return nil
}

func (f *fakeLedger) Release(ctx context.Context, token uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, token)
	return nil
}

func (f *fakeLedger) Expire(ctx context.Context, token uuid.UUID) error {
	return f.Release(ctx, token)
}

func (f *fakeLedger) GetReservation(ctx context.Context, token uuid.UUID) (*ledger.Reservation, error) {
	return nil, ledger.ErrReservationNotFound
}

func (f *fakeLedger) releasedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.released)
}

type fakeCatalog struct {
	events map[uuid.UUID]*events.Event
}

func (f *fakeCatalog) GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, events.ErrEventNotFound
	}
	return event, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	confirmed []uuid.UUID
	cancelled []uuid.UUID
	expired   []uuid.UUID
}

func (f *fakeNotifier) BookingConfirmed(ctx context.Context, booking *Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, booking.ID)
}

func (f *fakeNotifier) BookingCancelled(ctx context.Context, booking *Booking, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, booking.ID)
}

func (f *fakeNotifier) BookingExpired(ctx context.Context, booking *Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = append(f.expired, booking.ID)
}

type fakeRefunder struct {
	refunded []uuid.UUID
	err      error
}

func (f *fakeRefunder) RefundBooking(ctx context.Context, bookingID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.refunded = append(f.refunded, bookingID)
	return nil
}

type testHarness struct {
	repo     *fakeRepository
	tickets  *fakeLedger
	catalog  *fakeCatalog
	notifier *fakeNotifier
	service  Service
	event    *events.Event
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	event := &events.Event{
		ID:           uuid.New(),
		Name:         "Go Conference",
		VenueID:      uuid.New(),
		DateTime:     time.Now().Add(48 * time.Hour),
		TotalTickets: 100,
		TicketPrice:  50.00,
		Status:       events.StatusPublished,
	}

	h := &testHarness{
		repo:     newFakeRepository(),
		tickets:  newFakeLedger(),
		catalog:  &fakeCatalog{events: map[uuid.UUID]*events.Event{event.ID: event}},
		notifier: &fakeNotifier{},
		event:    event,
	}
	cfg := config.BookingConfig{
		HoldTTL:       10 * time.Minute,
		SweepInterval: time.Minute,
	}
	h.service = NewService(h.repo, h.tickets, h.catalog, h.notifier, cfg)
	return h
}

func (h *testHarness) createPendingBooking(t *testing.T, customerID uuid.UUID, quantity int) *Booking {
	t.Helper()
	resp, err := h.service.CreateBooking(context.Background(), customerID, CreateBookingRequest{
		EventID:  h.event.ID.String(),
		Quantity: quantity,
	})
	require.NoError(t, err)
	booking, err := h.repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	return booking
}

func TestCreateBookingComputesTotalServerSide(t *testing.T) {
	h := newTestHarness(t)
	customerID := uuid.New()

	booking := h.createPendingBooking(t, customerID, 3)

	assert.Equal(t, StatusPending, booking.Status)
	assert.Equal(t, 50.00, booking.UnitPrice)
	assert.Equal(t, 150.00, booking.TotalAmount, "total is quantity times the event's price, never client input")
	assert.NotEmpty(t, booking.BookingRef)
	assert.False(t, booking.ExpiresAt.IsZero())
}

func TestCreateBookingRejectsInvalidQuantity(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:  h.event.ID.String(),
		Quantity: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCreateBookingRejectsUnbookableEvent(t *testing.T) {
	h := newTestHarness(t)

	h.event.Status = events.StatusDraft
	_, err := h.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:  h.event.ID.String(),
		Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrEventNotBookable)

	h.event.Status = events.StatusPublished
	h.event.DateTime = time.Now().Add(-time.Hour)
	_, err = h.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:  h.event.ID.String(),
		Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrEventNotBookable)
}

func TestCreateBookingReleasesHoldWhenPersistFails(t *testing.T) {
	h := newTestHarness(t)
	h.repo.failNext = errors.New("db down")

	_, err := h.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:  h.event.ID.String(),
		Quantity: 2,
	})
	require.Error(t, err)
	assert.Equal(t, 1, h.tickets.releasedCount(), "the held tickets must go back to the pool")
}

func TestCreateBookingSurfacesSoldOut(t *testing.T) {
	h := newTestHarness(t)
	h.tickets.reserveErr = ledger.ErrInsufficientInventory

	_, err := h.service.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:  h.event.ID.String(),
		Quantity: 1,
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientInventory)
}

func TestConfirmBookingCommitsHold(t *testing.T) {
	h := newTestHarness(t)
	booking := h.createPendingBooking(t, uuid.New(), 2)

	confirmed, err := h.service.ConfirmBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)
	assert.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, []uuid.UUID{booking.ReservationID}, h.tickets.committed)
	assert.Equal(t, []uuid.UUID{booking.ID}, h.notifier.confirmed)
}

func TestConfirmBookingIsIdempotent(t *testing.T) {
	h := newTestHarness(t)
	booking := h.createPendingBooking(t, uuid.New(), 1)

	_, err := h.service.ConfirmBooking(context.Background(), booking.ID)
	require.NoError(t, err)

	again, err := h.service.ConfirmBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, again.Status)
	assert.Len(t, h.tickets.committed, 1, "the hold is committed once")
	assert.Len(t, h.notifier.confirmed, 1)
}

func TestConfirmBookingRejectsCancelled(t *testing.T) {
	h := newTestHarness(t)
	customerID := uuid.New()
	booking := h.createPendingBooking(t, customerID, 1)

	_, err := h.service.CancelBooking(context.Background(), booking.ID, customerID, false, "changed my mind")
	require.NoError(t, err)

	_, err = h.service.ConfirmBooking(context.Background(), booking.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "a cancelled booking can never be confirmed")
}

func TestConfirmBookingWithExpiredHoldCancels(t *testing.T) {
	h := newTestHarness(t)
	booking := h.createPendingBooking(t, uuid.New(), 2)

	h.tickets.commitErr = ledger.ErrReservationExpired
	_, err := h.service.ConfirmBooking(context.Background(), booking.ID)
	assert.ErrorIs(t, err, ErrBookingExpired)

	stored, err := h.repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)
	assert.Equal(t, "reservation hold expired", stored.CancelReason)
}

func TestCancelBookingEnforcesOwnership(t *testing.T) {
	h := newTestHarness(t)
	owner := uuid.New()
	booking := h.createPendingBooking(t, owner, 1)

	_, err := h.service.CancelBooking(context.Background(), booking.ID, uuid.New(), false, "")
	assert.ErrorIs(t, err, ErrNotBookingOwner)

	// An admin may cancel on the customer's behalf.
	resp, err := h.service.CancelBooking(context.Background(), booking.ID, uuid.New(), true, "fraud review")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, resp.Status)
}

func TestCancelBookingReleasesHold(t *testing.T) {
	h := newTestHarness(t)
	customerID := uuid.New()
	booking := h.createPendingBooking(t, customerID, 2)

	_, err := h.service.CancelBooking(context.Background(), booking.ID, customerID, false, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{booking.ReservationID}, h.tickets.released)
	assert.Equal(t, []uuid.UUID{booking.ID}, h.notifier.cancelled)
}

func TestCancelBookingIsIdempotent(t *testing.T) {
	h := newTestHarness(t)
	customerID := uuid.New()
	booking := h.createPendingBooking(t, customerID, 1)

	_, err := h.service.CancelBooking(context.Background(), booking.ID, customerID, false, "")
	require.NoError(t, err)

	resp, err := h.service.CancelBooking(context.Background(), booking.ID, customerID, false, "")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, resp.Status)
	assert.Len(t, h.tickets.released, 1, "the hold is released once")
}

func TestCancelConfirmedBookingTriggersRefund(t *testing.T) {
	h := newTestHarness(t)
	customerID := uuid.New()
	booking := h.createPendingBooking(t, customerID, 2)

	_, err := h.service.ConfirmBooking(context.Background(), booking.ID)
	require.NoError(t, err)

	refunder := &fakeRefunder{}
	h.service.SetRefunder(refunder)

	_, err = h.service.CancelBooking(context.Background(), booking.ID, customerID, false, "plans changed")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{booking.ID}, refunder.refunded)
}

func TestCancelConfirmedBookingAfterEventStarts(t *testing.T) {
	h := newTestHarness(t)
	customerID := uuid.New()
	booking := h.createPendingBooking(t, customerID, 1)

	_, err := h.service.ConfirmBooking(context.Background(), booking.ID)
	require.NoError(t, err)

	h.event.DateTime = time.Now().Add(-time.Hour)
	_, err = h.service.CancelBooking(context.Background(), booking.ID, customerID, false, "")
	assert.ErrorIs(t, err, ErrCancelAfterEvent)
}

func TestExpireReservationCancelsPendingBooking(t *testing.T) {
	h := newTestHarness(t)
	booking := h.createPendingBooking(t, uuid.New(), 1)

	err := h.service.ExpireReservation(context.Background(), booking.ReservationID)
	require.NoError(t, err)

	stored, err := h.repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)
	assert.Equal(t, "reservation hold expired", stored.CancelReason)
	assert.Equal(t, []uuid.UUID{booking.ID}, h.notifier.expired)
}

func TestExpireReservationSkipsSettledBookings(t *testing.T) {
	h := newTestHarness(t)
	booking := h.createPendingBooking(t, uuid.New(), 1)

	_, err := h.service.ConfirmBooking(context.Background(), booking.ID)
	require.NoError(t, err)

	require.NoError(t, h.service.ExpireReservation(context.Background(), booking.ReservationID))

	stored, err := h.repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, stored.Status, "a paid booking is not clawed back by the sweeper")
	assert.Empty(t, h.notifier.expired)
}

func TestExpireReservationUnknownReservationIsNoop(t *testing.T) {
	h := newTestHarness(t)
	require.NoError(t, h.service.ExpireReservation(context.Background(), uuid.New()))
}

func TestUpdateBookingStatusConfirmIsAdminOnly(t *testing.T) {
	h := newTestHarness(t)
	customerID := uuid.New()
	booking := h.createPendingBooking(t, customerID, 1)

	_, err := h.service.UpdateBookingStatus(context.Background(), booking.ID, customerID, false, UpdateBookingStatusRequest{
		Status: string(StatusConfirmed),
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	resp, err := h.service.UpdateBookingStatus(context.Background(), booking.ID, customerID, true, UpdateBookingStatusRequest{
		Status: string(StatusConfirmed),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, resp.Status)
}
