package notifications

import (
	"context"

	"eventixs/internal/bookings"
	"eventixs/pkg/logger"
)

// BookingNotifier adapts the notification service to the Notifier hook
// the bookings service exposes. Publish failures are logged, never
// surfaced into the booking flow.
type BookingNotifier struct {
	service NotificationService
	log     *logger.Logger
}

func NewBookingNotifier(service NotificationService) *BookingNotifier {
	return &BookingNotifier{
		service: service,
		log:     logger.GetDefault(),
	}
}

func (n *BookingNotifier) BookingConfirmed(ctx context.Context, booking *bookings.Booking) {
	n.publish(ctx, NotificationTypeBookingConfirmed, booking, nil)
}

func (n *BookingNotifier) BookingCancelled(ctx context.Context, booking *bookings.Booking, reason string) {
	data := map[string]interface{}{"reason": reason}
	if reason == "payment failed" {
		n.publish(ctx, NotificationTypePaymentFailed, booking, data)
		return
	}
	n.publish(ctx, NotificationTypeBookingCancelled, booking, data)
}

func (n *BookingNotifier) BookingExpired(ctx context.Context, booking *bookings.Booking) {
	n.publish(ctx, NotificationTypeReservationExpired, booking, nil)
}

func (n *BookingNotifier) publish(ctx context.Context, notType NotificationType, booking *bookings.Booking, data map[string]interface{}) {
	if data == nil {
		data = make(map[string]interface{})
	}
	data["booking_ref"] = booking.BookingRef

	bookingID := booking.ID
	eventID := booking.EventID
	if err := n.service.Notify(ctx, notType, booking.CustomerID, &bookingID, &eventID, data); err != nil {
		n.log.Error("failed to publish booking notification",
			"type", notType, "booking_id", booking.ID, "error", err)
	}
}
