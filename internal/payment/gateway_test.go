package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripeGateway_NotConfigured(t *testing.T) {
	g := NewStripeGateway("", "")
	assert.Equal(t, "usd", g.currency)

	_, err := g.CreateIntent(context.Background(), 500)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
