package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"go.uber.org/zap"
)

type MercadoPagoProvider struct {
	preferences preference.Client
	payments    mppayment.Client
	log         *zap.Logger
}

func NewMercadoPagoProvider(accessToken string, log *zap.Logger) (*MercadoPagoProvider, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}

	return &MercadoPagoProvider{
		preferences: preference.NewClient(cfg),
		payments:    mppayment.NewClient(cfg),
		log:         log,
	}, nil
}

func (p *MercadoPagoProvider) Name() string {
	return ProviderMercadoPago
}

func (p *MercadoPagoProvider) CreateCheckout(ctx context.Context, in CheckoutInput) (*Checkout, error) {
	amount, _ := in.Amount.Float64()

	resp, err := p.preferences.Create(ctx, preference.Request{
		ExternalReference: in.Reference,
		Items: []preference.ItemRequest{
			{
				ID:          in.Reference,
				Title:       in.Title,
				Description: in.Description,
				Quantity:    1,
				UnitPrice:   amount,
				CurrencyID:  in.Currency,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mercadopago preference: %w", err)
	}

	return &Checkout{
		ExternalID: resp.ID,
		URL:        resp.InitPoint,
	}, nil
}

// mercadoPagoNotification is the IPN body MercadoPago posts to the webhook.
type mercadoPagoNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (p *MercadoPagoProvider) HandleWebhook(ctx context.Context, payload []byte, _ string) (*WebhookEvent, error) {
	var n mercadoPagoNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("mercadopago notification: %w", err)
	}
	if n.Type != "payment" || n.Data.ID == "" {
		// Merchant-order and test notifications carry no payment state.
		return nil, nil
	}

	id, err := strconv.Atoi(n.Data.ID)
	if err != nil {
		return nil, fmt.Errorf("mercadopago payment id %q: %w", n.Data.ID, err)
	}

	pay, err := p.payments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mercadopago payment lookup: %w", err)
	}

	status := "pending"
	switch pay.Status {
	case "approved":
		status = "approved"
	case "rejected", "cancelled", "refunded", "charged_back":
		status = "rejected"
	}

	p.log.Info("mercadopago webhook",
		zap.Int("payment_id", id),
		zap.String("status", pay.Status))

	return &WebhookEvent{
		ExternalID: n.Data.ID,
		Reference:  pay.ExternalReference,
		Status:     status,
	}, nil
}
