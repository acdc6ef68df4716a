// Package payment talks to the external card processor.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ErrNotConfigured is returned by a gateway built without credentials.
var ErrNotConfigured = errors.New("payment gateway not configured")

// Gateway creates charge intents the web client confirms out of band.
type Gateway interface {
	// CreateIntent reserves amountInCents and returns the client secret.
	CreateIntent(ctx context.Context, amountInCents int64) (string, error)
}

// StripeGateway creates card PaymentIntents.
type StripeGateway struct {
	api      *client.API
	currency string
}

// NewStripeGateway returns a gateway for secret key; an empty key yields
// a gateway that fails every call with ErrNotConfigured.
func NewStripeGateway(key, currency string) *StripeGateway {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	g := &StripeGateway{currency: currency}
	if key != "" {
		g.api = &client.API{}
		g.api.Init(key, nil)
	}
	return g
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountInCents int64) (string, error) {
	if g.api == nil {
		return "", ErrNotConfigured
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountInCents),
		Currency:           stripe.String(g.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return pi.ClientSecret, nil
}
