package payment

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bookedbarber/bookedbarber-api/internal/config"
)

// Factory creates payment providers by name from the process configuration.
type Factory struct {
	cfg config.PaymentsConfig
	log *zap.Logger
}

func NewFactory(cfg config.PaymentsConfig, log *zap.Logger) *Factory {
	return &Factory{cfg: cfg, log: log}
}

func (f *Factory) GetProvider(name string) (Provider, error) {
	if name == "" {
		name = f.cfg.DefaultProvider
	}

	switch name {
	case ProviderMercadoPago:
		return f.createMercadoPago()
	case ProviderStripe:
		return f.createStripe()
	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", name)
	}
}

func (f *Factory) createMercadoPago() (Provider, error) {
	if f.cfg.MercadoPagoAccessToken == "" {
		return nil, fmt.Errorf("mercadopago access token not configured")
	}
	return NewMercadoPagoProvider(f.cfg.MercadoPagoAccessToken, f.log)
}

func (f *Factory) createStripe() (Provider, error) {
	if f.cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("stripe secret key not configured")
	}
	return NewStripeProvider(
		f.cfg.StripeSecretKey,
		f.cfg.StripeWebhookSecret,
		f.cfg.CheckoutSuccessURL,
		f.cfg.CheckoutCancelURL,
		f.log,
	), nil
}
