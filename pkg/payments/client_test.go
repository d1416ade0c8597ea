package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	"github.com/alerodas/shoply-backend/pkg/config"
)

func TestNewClientValidation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		cfg  config.StripeConfig
	}{
		{"missing api key", config.StripeConfig{WebhookSecret: "whsec_x"}},
		{"missing webhook secret", config.StripeConfig{APIKey: "sk_test_abc"}},
		{"invalid env", config.StripeConfig{APIKey: "sk_test_abc", WebhookSecret: "whsec_x", Env: "staging"}},
		{"live key in test env", config.StripeConfig{APIKey: "sk_live_abc", WebhookSecret: "whsec_x", Env: "test"}},
		{"test key in live env", config.StripeConfig{APIKey: "sk_test_abc", WebhookSecret: "whsec_x", Env: "live"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClient(ctx, tc.cfg, nil)
			require.Error(t, err)
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(context.Background(), config.StripeConfig{
		APIKey:        "sk_test_abc",
		WebhookSecret: "whsec_x",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "test", client.Environment())
	assert.Equal(t, "whsec_x", client.SigningSecret())
	assert.Equal(t, 10*time.Second, client.Timeout())
}

func TestFromStripeSession(t *testing.T) {
	sess := &stripe.CheckoutSession{
		ID:            "cs_test_123",
		URL:           "https://checkout.stripe.test/cs_test_123",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		Metadata:      map[string]string{OrderIDMetadataKey: "order-1"},
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_123"},
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Email: "buyer@example.com",
		},
		Created: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).Unix(),
	}

	out := fromStripeSession(sess)
	require.NotNil(t, out)
	assert.Equal(t, "cs_test_123", out.ID)
	assert.Equal(t, "order-1", out.OrderID)
	assert.True(t, out.Paid)
	assert.Equal(t, "pi_123", out.PaymentIntentID)
	assert.Equal(t, "buyer@example.com", out.PayerEmail)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), out.CompletedAt)
}

func TestFromStripeSessionUnpaid(t *testing.T) {
	out := fromStripeSession(&stripe.CheckoutSession{
		ID:            "cs_test_456",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
	})
	require.NotNil(t, out)
	assert.False(t, out.Paid)
	assert.Empty(t, out.OrderID)
}
