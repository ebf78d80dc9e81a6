package payments

import "errors"

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrAmountMismatch       = errors.New("payment amount does not match booking total")
	ErrDuplicateTransaction = errors.New("transaction already processed")
	ErrBookingNotPayable    = errors.New("booking is not awaiting payment")
	ErrNotPaymentOwner      = errors.New("payment belongs to another customer")
	ErrPaymentNotRefundable = errors.New("payment is not in a refundable state")
	ErrRetriesExhausted     = errors.New("payment retry budget exhausted")
)
