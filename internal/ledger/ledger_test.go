package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepository mirrors the transactional semantics of the Postgres
// repository so the ledger's serialization and idempotence rules can be
// exercised without a database.
type memoryRepository struct {
	mu           sync.Mutex
	total        map[uuid.UUID]int
	available    map[uuid.UUID]int
	reservations map[uuid.UUID]*Reservation
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		total:        make(map[uuid.UUID]int),
		available:    make(map[uuid.UUID]int),
		reservations: make(map[uuid.UUID]*Reservation),
	}
}

func (m *memoryRepository) addEvent(eventID uuid.UUID, totalTickets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total[eventID] = totalTickets
	m.available[eventID] = totalTickets
}

func (m *memoryRepository) availableFor(eventID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available[eventID]
}

func (m *memoryRepository) Reserve(ctx context.Context, eventID uuid.UUID, quantity int, expiresAt time.Time) (*Reservation, int, error) {
	if quantity < 1 {
		return nil, -1, ErrInvalidQuantity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	total, ok := m.total[eventID]
	if !ok {
		return nil, -1, ErrEventNotFound
	}
	if m.available[eventID] < quantity {
		return nil, -1, ErrInsufficientInventory
	}

	newAvailable := m.available[eventID] - quantity
	if newAvailable < 0 || newAvailable > total {
		return nil, -1, fmt.Errorf("inventory bounds violated for event %s", eventID)
	}
	m.available[eventID] = newAvailable

	res := &Reservation{
		ID:        uuid.New(),
		EventID:   eventID,
		Quantity:  quantity,
		Status:    StatusHeld,
		ExpiresAt: expiresAt,
	}
	m.reservations[res.ID] = res

	copied := *res
	return &copied, newAvailable, nil
}

func (m *memoryRepository) GetReservation(ctx context.Context, token uuid.UUID) (*Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.reservations[token]
	if !ok {
		return nil, ErrReservationNotFound
	}
	copied := *res
	return &copied, nil
}

func (m *memoryRepository) Commit(ctx context.Context, token uuid.UUID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.reservations[token]
	if !ok {
		return ErrReservationNotFound
	}

	switch res.Status {
	case StatusCommitted:
		return nil
	case StatusReleased, StatusExpired:
		return ErrReservationExpired
	}

	if res.IsLapsed(now) {
		m.available[res.EventID] += res.Quantity
		res.Status = StatusExpired
		return ErrReservationExpired
	}

	res.Status = StatusCommitted
	return nil
}

func (m *memoryRepository) Release(ctx context.Context, token uuid.UUID, to ReservationStatus) (int, int, error) {
	if !to.IsTerminal() {
		return 0, -1, fmt.Errorf("release target must be terminal, got %s", to)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.reservations[token]
	if !ok {
		return 0, -1, ErrReservationNotFound
	}
	if res.Status.IsTerminal() {
		return 0, -1, nil
	}

	newAvailable := m.available[res.EventID] + res.Quantity
	if newAvailable > m.total[res.EventID] {
		return 0, -1, fmt.Errorf("cannot restore %d tickets for event %s", res.Quantity, res.EventID)
	}
	m.available[res.EventID] = newAvailable
	res.Status = to

	return res.Quantity, newAvailable, nil
}

func (m *memoryRepository) FindLapsed(ctx context.Context, now time.Time, limit int) ([]Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lapsed []Reservation
	for _, res := range m.reservations {
		if res.Status == StatusHeld && res.ExpiresAt.Before(now) {
			lapsed = append(lapsed, *res)
			if len(lapsed) >= limit {
				break
			}
		}
	}
	return lapsed, nil
}

func newTestLedger(repo Repository, holdTTL time.Duration) Ledger {
	return NewLedger(repo, nil, holdTTL, nil)
}

func TestReserveConcurrentNoOversell(t *testing.T) {
	repo := newMemoryRepository()
	eventID := uuid.New()
	repo.addEvent(eventID, 10)

	l := newTestLedger(repo, 10*time.Minute)

	const attempts = 50
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Reserve(context.Background(), eventID, 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, soldOut := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case err == ErrInsufficientInventory:
			soldOut++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 10, succeeded, "exactly capacity reservations must succeed")
	assert.Equal(t, 40, soldOut)
	assert.Equal(t, 0, repo.availableFor(eventID))
}

func TestReserveRejectsInvalidQuantity(t *testing.T) {
	repo := newMemoryRepository()
	eventID := uuid.New()
	repo.addEvent(eventID, 5)

	l := newTestLedger(repo, 10*time.Minute)

	for _, quantity := range []int{0, -1, -100} {
		_, err := l.Reserve(context.Background(), eventID, quantity)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity %d", quantity)
	}
	assert.Equal(t, 5, repo.availableFor(eventID), "failed reserves must not touch inventory")
}

func TestReserveAllOrNothing(t *testing.T) {
	repo := newMemoryRepository()
	eventID := uuid.New()
	repo.addEvent(eventID, 5)

	l := newTestLedger(repo, 10*time.Minute)

	_, err := l.Reserve(context.Background(), eventID, 6)
	require.ErrorIs(t, err, ErrInsufficientInventory)
	assert.Equal(t, 5, repo.availableFor(eventID), "no partial deduction on failure")

	res, err := l.Reserve(context.Background(), eventID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Quantity)
	assert.Equal(t, 0, repo.availableFor(eventID))
}

func TestReserveUnknownEvent(t *testing.T) {
	repo := newMemoryRepository()
	l := newTestLedger(repo, 10*time.Minute)

	_, err := l.Reserve(context.Background(), uuid.New(), 1)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestCommitIsIdempotent(t *testing.T) {
	repo := newMemoryRepository()
	eventID := uuid.New()
	repo.addEvent(eventID, 10)

	l := newTestLedger(repo, 10*time.Minute)

	res, err := l.Reserve(context.Background(), eventID, 3)
	require.NoError(t, err)

	require.NoError(t, l.Commit(context.Background(), res.ID))
	require.NoError(t, l.Commit(context.Background(), res.ID), "second commit is a no-op")

	stored, err := l.GetReservation(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCommitted, stored.Status)
	assert.Equal(t, 7, repo.availableFor(eventID), "committed tickets stay deducted")
}

func TestReleaseIsIdempotent(t *testing.T) {
	repo := newMemoryRepository()
	eventID := uuid.New()
	repo.addEvent(eventID, 10)

	l := newTestLedger(repo, 10*time.Minute)

	res, err := l.Reserve(context.Background(), eventID, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, repo.availableFor(eventID))

	require.NoError(t, l.Release(context.Background(), res.ID))
	assert.Equal(t, 10, repo.availableFor(eventID))

	// A second release must not restore twice.
	require.NoError(t, l.Release(context.Background(), res.ID))
	assert.Equal(t, 10, repo.availableFor(eventID))

	stored, err := l.GetReservation(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReleased, stored.Status)
}

func TestCommitAfterReleaseFails(t *testing.T) {
	repo := newMemoryRepository()
	eventID := uuid.New()
	repo.addEvent(eventID, 10)

	l := newTestLedger(repo, 10*time.Minute)

	res, err := l.Reserve(context.Background(), eventID, 2)
	require.NoError(t, err)
	require.NoError(t, l.Release(context.Background(), res.ID))

	err = l.Commit(context.Background(), res.ID)
	assert.ErrorIs(t, err, ErrReservationExpired)
	assert.Equal(t, 10, repo.availableFor(eventID), "failed commit must not change inventory")
}

func TestCommitLapsedHoldExpiresInPlace(t *testing.T) {
	repo := newMemoryRepository()
	eventID := uuid.New()
	repo.addEvent(eventID, 10)

	// Negative TTL: the hold lapses the moment it is created.
	l := newTestLedger(repo, -time.Minute)

	res, err := l.Reserve(context.Background(), eventID, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, repo.availableFor(eventID))

	err = l.Commit(context.Background(), res.ID)
	assert.ErrorIs(t, err, ErrReservationExpired)

	stored, err := l.GetReservation(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, stored.Status)
	assert.Equal(t, 10, repo.availableFor(eventID), "lazy expiry restores inventory")
}

func TestExpiredHoldRestocksForNextCustomer(t *testing.T) {
	repo := newMemoryRepository()
	eventID := uuid.New()
	repo.addEvent(eventID, 2)

	l := newTestLedger(repo, -time.Minute)

	held, err := l.Reserve(context.Background(), eventID, 2)
	require.NoError(t, err)

	// Sold out while the first hold is open.
	_, err = l.Reserve(context.Background(), eventID, 2)
	require.ErrorIs(t, err, ErrInsufficientInventory)

	// The sweeper finds the lapsed hold and expires it.
	lapsed, err := repo.FindLapsed(context.Background(), time.Now(), 100)
	require.NoError(t, err)
	require.Len(t, lapsed, 1)
	require.Equal(t, held.ID, lapsed[0].ID)
	require.NoError(t, l.Expire(context.Background(), lapsed[0].ID))

	// The restocked tickets are sellable again.
	res, err := l.Reserve(context.Background(), eventID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Quantity)
	assert.Equal(t, 0, repo.availableFor(eventID))
}

func TestReleaseUnknownToken(t *testing.T) {
	repo := newMemoryRepository()
	l := newTestLedger(repo, 10*time.Minute)

	err := l.Release(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestConcurrentMixedOperationsKeepBounds(t *testing.T) {
	repo := newMemoryRepository()
	eventID := uuid.New()
	const capacity = 20
	repo.addEvent(eventID, capacity)

	l := newTestLedger(repo, 10*time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := l.Reserve(context.Background(), eventID, 1+i%3)
			if err != nil {
				return
			}
			if i%2 == 0 {
				_ = l.Commit(context.Background(), res.ID)
			} else {
				_ = l.Release(context.Background(), res.ID)
			}
		}(i)
	}
	wg.Wait()

	available := repo.availableFor(eventID)
	assert.GreaterOrEqual(t, available, 0, "availability must never go negative")
	assert.LessOrEqual(t, available, capacity, "availability must never exceed capacity")

	committed := 0
	repo.mu.Lock()
	for _, res := range repo.reservations {
		if res.Status == StatusCommitted {
			committed += res.Quantity
		}
	}
	repo.mu.Unlock()
	assert.Equal(t, capacity-committed, available, "committed quantity accounts for every missing ticket")
}
