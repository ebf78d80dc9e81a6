package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the database constraints the inventory invariant
// relies on. AutoMigrate handles columns; the CHECKs below are the final
// guard against any code path that slips past the ledger's critical section.
func MigrateConstraints(db *gorm.DB) error {
	// available_tickets must stay inside [0, total_tickets] at all times.
	err := db.Exec(`
		ALTER TABLE events
		DROP CONSTRAINT IF EXISTS chk_events_available_bounds;
	`).Error
	if err != nil {
		return err
	}
	err = db.Exec(`
		ALTER TABLE events
		ADD CONSTRAINT chk_events_available_bounds
		CHECK (available_tickets >= 0 AND available_tickets <= total_tickets);
	`).Error
	if err != nil {
		return err
	}

	// One booking per reservation token.
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_reservation_id
		ON bookings (reservation_id);
	`).Error
	if err != nil {
		return err
	}

	// Settled gateway callbacks are deduplicated on transaction_id.
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_transaction_id
		ON payments (transaction_id)
		WHERE transaction_id IS NOT NULL AND transaction_id <> '';
	`).Error
	if err != nil {
		return err
	}

	// Sweep and lookup paths.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reservations_status_expires
		ON reservations (status, expires_at);
	`).Error
	if err != nil {
		return err
	}

	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_payments_booking_id
		ON payments (booking_id);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
