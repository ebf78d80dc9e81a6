package payments

import (
	"context"
	"fmt"
	"strings"

	"eventixs/internal/shared/config"
	"eventixs/pkg/logger"

	"github.com/google/uuid"
)

// Gateway abstracts the upstream payment provider. Charges settle
// asynchronously: the provider reports the outcome to the webhook, the
// charge call only opens the attempt.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, gatewayRef string, amount float64) error
}

type ChargeRequest struct {
	BookingRef  string
	Amount      float64
	Currency    string
	Method      string
	Phone       string
	CallbackURL string
}

type ChargeResult struct {
	GatewayRef string
}

// sandboxGateway is an in-process stand-in for a real provider. It
// accepts every charge and leaves settlement to the webhook, which is
// exactly how the hosted sandbox behaves.
type sandboxGateway struct {
	cfg config.PaymentConfig
	log *logger.Logger
}

func NewSandboxGateway(cfg config.PaymentConfig) Gateway {
	return &sandboxGateway{
		cfg: cfg,
		log: logger.GetDefault(),
	}
}

func (g *sandboxGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	ref := fmt.Sprintf("SBX-%s", strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12]))

	g.log.Info("sandbox charge opened",
		"gateway_ref", ref,
		"booking_ref", req.BookingRef,
		"amount", req.Amount,
		"currency", req.Currency,
		"method", req.Method,
		"phone", req.Phone,
		"callback_url", req.CallbackURL,
	)
	return &ChargeResult{GatewayRef: ref}, nil
}

func (g *sandboxGateway) Refund(ctx context.Context, gatewayRef string, amount float64) error {
	g.log.Info("sandbox refund issued", "gateway_ref", gatewayRef, "amount", amount)
	return nil
}
