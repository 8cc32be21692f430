package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farroshouse/ordering/internal/pricing"
)

func TestLoadStorefront_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "REDIS_ADDR", "CART_TTL", "SESSION_IDLE_TIMEOUT", "GATEWAY_TIMEOUT", "TAX_RATE", "DELIVERY_FEE_PENCE", "PAYMENT_PROXY_URL", "MENU_PATH", "CHECKOUT_LOG_PATH"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadStorefront()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 15*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdle)
	assert.Equal(t, "http://localhost:4242", cfg.PaymentProxyURL)

	def := pricing.DefaultPolicy()
	policy := cfg.Pricing.Policy()
	assert.True(t, def.TaxRate.Equal(policy.TaxRate))
	assert.True(t, def.DeliveryFee.Equal(policy.DeliveryFee))
}

func TestLoadStorefront_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("GATEWAY_TIMEOUT", "3s")
	t.Setenv("TAX_RATE", "0.2")
	t.Setenv("DELIVERY_FEE_PENCE", "399")

	cfg, err := LoadStorefront()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 3*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, "0.2", cfg.Pricing.TaxRate.String())
	assert.Equal(t, "3.99", cfg.Pricing.Policy().DeliveryFee.StringFixed(2))
}

func TestLoadStorefront_SessionIdleDefaultsWithinCartTTL(t *testing.T) {
	t.Setenv("CART_TTL", "30m")
	t.Setenv("SESSION_IDLE_TIMEOUT", "")

	cfg, err := LoadStorefront()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdle)

	t.Setenv("SESSION_IDLE_TIMEOUT", "45m")
	cfg, err = LoadStorefront()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, cfg.SessionIdle)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"GATEWAY_TIMEOUT":          "soon",
		"SESSION_IDLE_TIMEOUT":     "0s",
		"TAX_RATE":                 "1.5",
		"DELIVERY_FEE_PENCE":       "-1",
		"MOCK_DECLINE_ABOVE_PENCE": "lots",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, errS := LoadStorefront()
			_, errP := LoadProxy()
			assert.True(t, errS != nil || errP != nil, "expected %s=%q to be rejected", key, value)
		})
	}
}

func TestLoadProxy(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_1")
	t.Setenv("CURRENCY", "")
	t.Setenv("SHIPPING_COUNTRIES", "")
	t.Setenv("MOCK_DECLINE_ABOVE_PENCE", "")

	cfg, err := LoadProxy()
	require.NoError(t, err)
	assert.Equal(t, "4242", cfg.Port)
	assert.Equal(t, "sk_test_1", cfg.StripeSecretKey)
	assert.Equal(t, "gbp", cfg.Currency)
	assert.Equal(t, int64(50000), cfg.MockDeclineAbovePence)
	assert.Equal(t, []string{"GB"}, cfg.ShippingCountries)

	t.Setenv("SHIPPING_COUNTRIES", "GB, IE,")
	cfg, err = LoadProxy()
	require.NoError(t, err)
	assert.Equal(t, []string{"GB", "IE"}, cfg.ShippingCountries)
}
