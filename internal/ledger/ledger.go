package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"eventixs/pkg/logger"

	"github.com/google/uuid"
)

// Ledger is the sole arbiter of ticket inventory. Every change to an
// event's available ticket count passes through one of its operations,
// and all operations touching one event share a single critical section.
type Ledger interface {
	// Reserve atomically holds quantity tickets against the event, or
	// fails with ErrInsufficientInventory without partial effect.
	Reserve(ctx context.Context, eventID uuid.UUID, quantity int) (*Reservation, error)

	// Commit makes the hold permanent. Idempotent for committed tokens.
	Commit(ctx context.Context, token uuid.UUID) error

	// Release returns the hold's tickets to the pool. Idempotent.
	Release(ctx context.Context, token uuid.UUID) error

	// Expire releases a lapsed hold, marking it EXPIRED.
	Expire(ctx context.Context, token uuid.UUID) error

	// GetReservation looks up a reservation by token.
	GetReservation(ctx context.Context, token uuid.UUID) (*Reservation, error)
}

type ledgerService struct {
	repo    Repository
	gate    *AvailabilityGate
	holdTTL time.Duration
	log     *logger.Logger

	// Per-event serialization point. The repository transaction also
	// locks the event row; this keeps contention in-process instead of
	// queueing on Postgres.
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewLedger creates the inventory ledger. The gate may be nil, in which
// case every reservation goes straight to the repository.
func NewLedger(repo Repository, gate *AvailabilityGate, holdTTL time.Duration, log *logger.Logger) Ledger {
	if log == nil {
		log = logger.GetDefault()
	}
	return &ledgerService{
		repo:    repo,
		gate:    gate,
		holdTTL: holdTTL,
		log:     log,
		locks:   make(map[uuid.UUID]*sync.Mutex),
	}
}

// eventLock returns the mutex serializing inventory operations for one event.
func (l *ledgerService) eventLock(eventID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[eventID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[eventID] = lock
	}
	return lock
}

func (l *ledgerService) Reserve(ctx context.Context, eventID uuid.UUID, quantity int) (*Reservation, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	lock := l.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	// Fast path: shed requests the gate already knows cannot be satisfied.
	gateHeld := false
	if l.gate != nil {
		ok, known, err := l.gate.TryAcquire(ctx, eventID, quantity)
		if err != nil {
			// Redis trouble never blocks reservations; Postgres decides.
			l.log.WarnContext(ctx, "availability gate unavailable", "event_id", eventID.String(), "error", err.Error())
		} else if known && !ok {
			return nil, ErrInsufficientInventory
		} else if ok {
			gateHeld = true
		}
	}

	expiresAt := time.Now().Add(l.holdTTL)
	reservation, remaining, err := l.repo.Reserve(ctx, eventID, quantity, expiresAt)
	if err != nil {
		if gateHeld {
			if rbErr := l.gate.Rollback(ctx, eventID, quantity); rbErr != nil {
				l.log.WarnContext(ctx, "gate rollback failed", "event_id", eventID.String(), "error", rbErr.Error())
			}
		}
		return nil, err
	}

	// Overwrite the gate with the authoritative count to correct drift.
	if l.gate != nil {
		if err := l.gate.Sync(ctx, eventID, remaining); err != nil {
			l.log.WarnContext(ctx, "gate sync failed", "event_id", eventID.String(), "error", err.Error())
		}
	}

	l.log.LogReservationHeld(ctx, reservation.ID.String(), eventID.String(), quantity)
	return reservation, nil
}

func (l *ledgerService) Commit(ctx context.Context, token uuid.UUID) error {
	reservation, err := l.repo.GetReservation(ctx, token)
	if err != nil {
		return err
	}

	lock := l.eventLock(reservation.EventID)
	lock.Lock()
	defer lock.Unlock()

	err = l.repo.Commit(ctx, token, time.Now())
	if errors.Is(err, ErrReservationExpired) && reservation.IsHeld() {
		// The commit found the hold lapsed and expired it in place, which
		// restored inventory behind the gate's back.
		if l.gate != nil {
			if rbErr := l.gate.Rollback(ctx, reservation.EventID, reservation.Quantity); rbErr != nil {
				l.log.WarnContext(ctx, "gate rollback failed", "event_id", reservation.EventID.String(), "error", rbErr.Error())
			}
		}
		l.log.LogReservationReleased(ctx, token.String(), reservation.EventID.String(), reservation.Quantity, "lapsed before commit")
	}
	return err
}

func (l *ledgerService) Release(ctx context.Context, token uuid.UUID) error {
	return l.release(ctx, token, StatusReleased, "released")
}

func (l *ledgerService) Expire(ctx context.Context, token uuid.UUID) error {
	return l.release(ctx, token, StatusExpired, "expired")
}

func (l *ledgerService) release(ctx context.Context, token uuid.UUID, to ReservationStatus, reason string) error {
	reservation, err := l.repo.GetReservation(ctx, token)
	if err != nil {
		return err
	}

	lock := l.eventLock(reservation.EventID)
	lock.Lock()
	defer lock.Unlock()

	restored, remaining, err := l.repo.Release(ctx, token, to)
	if err != nil {
		return err
	}

	if restored == 0 {
		// Token was already terminal - the second release is a no-op.
		l.log.InfoWithContext(ctx, "reservation already released", map[string]interface{}{
			"reservation_id": token.String(),
			"status":         string(reservation.Status),
		})
		return nil
	}

	if l.gate != nil {
		if err := l.gate.Sync(ctx, reservation.EventID, remaining); err != nil {
			l.log.WarnContext(ctx, "gate sync failed", "event_id", reservation.EventID.String(), "error", err.Error())
		}
	}

	l.log.LogReservationReleased(ctx, token.String(), reservation.EventID.String(), restored, reason)
	return nil
}

func (l *ledgerService) GetReservation(ctx context.Context, token uuid.UUID) (*Reservation, error) {
	return l.repo.GetReservation(ctx, token)
}
