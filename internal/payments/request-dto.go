package payments

type InitiatePaymentRequest struct {
	BookingID string  `json:"booking_id" binding:"required,uuid"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Method    string  `json:"method" binding:"omitempty,oneof=CARD MOBILE_MONEY BANK_TRANSFER"`
	Phone     string  `json:"phone,omitempty" binding:"omitempty,e164"`
}

// STKPushRequest triggers a mobile-money charge pushed to the customer's
// handset. Settlement still arrives through the webhook.
type STKPushRequest struct {
	BookingID string  `json:"booking_id" binding:"required,uuid"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Phone     string  `json:"phone" binding:"required,e164"`
}

// GatewayCallbackRequest is the payload the payment gateway posts to the
// webhook once a charge settles.
type GatewayCallbackRequest struct {
	GatewayRef    string `json:"gateway_ref" binding:"required"`
	TransactionID string `json:"transaction_id" binding:"required"`
	Status        string `json:"status" binding:"required,oneof=SUCCESS FAILED"`
	FailureReason string `json:"failure_reason" binding:"max=255"`
}
