package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
)

type StripeProvider struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
	log           *zap.Logger
}

func NewStripeProvider(secretKey, webhookSecret, successURL, cancelURL string, log *zap.Logger) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &StripeProvider{
		api:           api,
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
		log:           log,
	}
}

func (p *StripeProvider) Name() string {
	return ProviderStripe
}

func (p *StripeProvider) CreateCheckout(ctx context.Context, in CheckoutInput) (*Checkout, error) {
	cents := in.Amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(in.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(in.Title),
						Description: stripe.String(in.Description),
					},
					UnitAmount: stripe.Int64(cents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(in.Reference),
		SuccessURL:        stripe.String(p.successURL),
		CancelURL:         stripe.String(p.cancelURL),
	}
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}

	return &Checkout{
		ExternalID: sess.ID,
		URL:        sess.URL,
	}, nil
}

func (p *StripeProvider) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("stripe webhook signature: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.expired":
	default:
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("stripe session payload: %w", err)
	}

	status := "approved"
	if event.Type == "checkout.session.expired" {
		status = "rejected"
	}

	p.log.Info("stripe webhook",
		zap.String("session_id", sess.ID),
		zap.String("event", string(event.Type)))

	return &WebhookEvent{
		ExternalID: sess.ID,
		Reference:  sess.ClientReferenceID,
		Status:     status,
	}, nil
}
