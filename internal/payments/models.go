package payments

import (
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	BookingID     uuid.UUID  `json:"booking_id" gorm:"type:uuid;not null;index"`
	CustomerID    uuid.UUID  `json:"customer_id" gorm:"type:uuid;not null;index"`
	Amount        float64    `json:"amount" gorm:"not null"`
	Currency      string     `json:"currency" gorm:"not null;size:3"`
	Method        string     `json:"method" gorm:"not null;size:32"`
	Status        Status     `json:"status" gorm:"not null;default:'PENDING';index"`
	GatewayRef    string     `json:"gateway_ref" gorm:"not null;uniqueIndex;size:64"`
	TransactionID string     `json:"transaction_id,omitempty" gorm:"size:64"`
	Attempts      int        `json:"attempts" gorm:"not null;default:0"`
	FailureReason string     `json:"failure_reason,omitempty" gorm:"size:255"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	RefundedAt    *time.Time `json:"refunded_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}

// PaymentAttempt is one processed gateway settlement. Every callback the
// correlator applies leaves a row here; the unique transaction id keeps a
// replay detectable even after later attempts overwrite the payment's
// latest transaction reference.
type PaymentAttempt struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PaymentID     uuid.UUID `json:"payment_id" gorm:"type:uuid;not null;index"`
	TransactionID string    `json:"transaction_id" gorm:"not null;uniqueIndex;size:64"`
	Outcome       Status    `json:"outcome" gorm:"not null"`
	FailureReason string    `json:"failure_reason,omitempty" gorm:"size:255"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (PaymentAttempt) TableName() string {
	return "payment_attempts"
}
