package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventixs/internal/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists reservations and owns every mutation of an event's
// available ticket count. All inventory arithmetic for one event happens
// inside a single transaction holding the event row lock.
type Repository interface {
	// Reserve atomically checks availability, decrements it and inserts a
	// HELD reservation. Returns the reservation and the remaining
	// availability after the decrement.
	Reserve(ctx context.Context, eventID uuid.UUID, quantity int, expiresAt time.Time) (*Reservation, int, error)

	// GetReservation looks up a reservation by token.
	GetReservation(ctx context.Context, token uuid.UUID) (*Reservation, error)

	// Commit marks a HELD reservation COMMITTED, keeping the deduction.
	// A lapsed hold is expired in place (inventory restored) and
	// ErrReservationExpired is returned. Committing a COMMITTED token is
	// a no-op; committing a RELEASED or EXPIRED token fails with
	// ErrReservationExpired.
	Commit(ctx context.Context, token uuid.UUID, now time.Time) error

	// Release returns the reservation's tickets to the pool and marks it
	// with the given terminal status (RELEASED or EXPIRED). Idempotent:
	// an already terminal reservation restores nothing. Returns the
	// quantity restored and the availability after the restore (-1 when
	// nothing changed).
	Release(ctx context.Context, token uuid.UUID, to ReservationStatus) (int, int, error)

	// FindLapsed returns HELD reservations whose window closed before now.
	FindLapsed(ctx context.Context, now time.Time, limit int) ([]Reservation, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Reserve(ctx context.Context, eventID uuid.UUID, quantity int, expiresAt time.Time) (*Reservation, int, error) {
	if quantity < 1 {
		return nil, -1, ErrInvalidQuantity
	}

	var reservation *Reservation
	var remaining int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the event row so concurrent reserves serialize here
		var event struct {
			ID               uuid.UUID `gorm:"column:id"`
			TotalTickets     int       `gorm:"column:total_tickets"`
			AvailableTickets int       `gorm:"column:available_tickets"`
		}

		err := tx.Table("events").
			Select("id, total_tickets, available_tickets").
			Where("id = ?", eventID).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("failed to lock event: %w", err)
		}

		// 2. Check availability - no partial reservation
		if event.AvailableTickets < quantity {
			return ErrInsufficientInventory
		}

		newAvailable := event.AvailableTickets - quantity
		if newAvailable < 0 || newAvailable > event.TotalTickets {
			// Must never happen while the row lock is held; fail, don't clamp.
			return fmt.Errorf("inventory bounds violated for event %s", eventID)
		}

		// 3. Decrement availability
		err = tx.Model(&events.Event{}).
			Where("id = ?", eventID).
			Update("available_tickets", newAvailable).Error
		if err != nil {
			return fmt.Errorf("failed to decrement availability: %w", err)
		}

		// 4. Insert the hold
		res := &Reservation{
			EventID:   eventID,
			Quantity:  quantity,
			Status:    StatusHeld,
			ExpiresAt: expiresAt,
		}
		if err := tx.Create(res).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}

		reservation = res
		remaining = newAvailable
		return nil
	})
	if err != nil {
		return nil, -1, err
	}

	return reservation, remaining, nil
}

func (r *repository) GetReservation(ctx context.Context, token uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).Where("id = ?", token).First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) Commit(ctx context.Context, token uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservation Reservation
		err := tx.Where("id = ?", token).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&reservation).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("failed to lock reservation: %w", err)
		}

		switch reservation.Status {
		case StatusCommitted:
			// Idempotent: already permanent.
			return nil
		case StatusReleased, StatusExpired:
			return ErrReservationExpired
		}

		if reservation.IsLapsed(now) {
			// Lazy expiry: the sweep has not caught this hold yet.
			if err := restoreInventory(tx, reservation.EventID, reservation.Quantity); err != nil {
				return err
			}
			if err := tx.Model(&reservation).Update("status", StatusExpired).Error; err != nil {
				return fmt.Errorf("failed to expire reservation: %w", err)
			}
			return ErrReservationExpired
		}

		return tx.Model(&reservation).Update("status", StatusCommitted).Error
	})
}

func (r *repository) Release(ctx context.Context, token uuid.UUID, to ReservationStatus) (int, int, error) {
	if !to.IsTerminal() {
		return 0, -1, fmt.Errorf("release target must be terminal, got %s", to)
	}

	restored := 0
	remaining := -1

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservation Reservation
		err := tx.Where("id = ?", token).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&reservation).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("failed to lock reservation: %w", err)
		}

		// Idempotent: inventory for a terminal reservation was already returned.
		if reservation.Status.IsTerminal() {
			return nil
		}

		newAvailable, err := restoreInventoryCount(tx, reservation.EventID, reservation.Quantity)
		if err != nil {
			return err
		}

		if err := tx.Model(&reservation).Update("status", to).Error; err != nil {
			return fmt.Errorf("failed to update reservation status: %w", err)
		}

		restored = reservation.Quantity
		remaining = newAvailable
		return nil
	})
	if err != nil {
		return 0, -1, err
	}

	return restored, remaining, nil
}

func (r *repository) FindLapsed(ctx context.Context, now time.Time, limit int) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusHeld).
		Where("expires_at < ?", now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&reservations).Error
	return reservations, err
}

// restoreInventory adds quantity back to the event's availability under the
// event row lock, failing instead of clamping if the bounds would break.
func restoreInventory(tx *gorm.DB, eventID uuid.UUID, quantity int) error {
	_, err := restoreInventoryCount(tx, eventID, quantity)
	return err
}

func restoreInventoryCount(tx *gorm.DB, eventID uuid.UUID, quantity int) (int, error) {
	var event struct {
		ID               uuid.UUID `gorm:"column:id"`
		TotalTickets     int       `gorm:"column:total_tickets"`
		AvailableTickets int       `gorm:"column:available_tickets"`
	}

	err := tx.Table("events").
		Select("id, total_tickets, available_tickets").
		Where("id = ?", eventID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return -1, ErrEventNotFound
		}
		return -1, fmt.Errorf("failed to lock event: %w", err)
	}

	newAvailable := event.AvailableTickets + quantity
	if newAvailable > event.TotalTickets {
		return -1, fmt.Errorf("cannot restore %d tickets: would exceed capacity of event %s", quantity, eventID)
	}

	err = tx.Model(&events.Event{}).
		Where("id = ?", eventID).
		Update("available_tickets", newAvailable).Error
	if err != nil {
		return -1, fmt.Errorf("failed to restore availability: %w", err)
	}

	return newAvailable, nil
}
