package database

import (
	"eventixs/internal/bookings"
	"eventixs/internal/events"
	"eventixs/internal/ledger"
	"eventixs/internal/payments"
	"eventixs/internal/support"
	"eventixs/internal/users"
	"eventixs/internal/venues"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&venues.Venue{},
		&events.Event{},
		&ledger.Reservation{},
		&bookings.Booking{},
		&payments.Payment{},
		&payments.PaymentAttempt{},
		&support.SupportTicket{},
	)
}
