package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

const (
	ProviderMercadoPago = "mercadopago"
	ProviderStripe      = "stripe"
)

type CheckoutInput struct {
	// Reference is our idempotency key; providers echo it back on webhooks.
	Reference   string
	Title       string
	Description string
	Amount      decimal.Decimal
	Currency    string
}

type Checkout struct {
	ExternalID string
	URL        string
}

// WebhookEvent is the provider-agnostic result of parsing a payment
// notification.
type WebhookEvent struct {
	ExternalID string
	Reference  string
	Status     string // pending / approved / rejected
}

type Provider interface {
	Name() string
	CreateCheckout(ctx context.Context, in CheckoutInput) (*Checkout, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}
