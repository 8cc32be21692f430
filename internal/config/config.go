// Package config reads process settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farroshouse/ordering/internal/pricing"
)

// Pricing is shared by both processes so their totals agree.
type Pricing struct {
	TaxRate          decimal.Decimal
	DeliveryFeePence int64
}

func (p Pricing) Policy() pricing.Policy {
	return pricing.Policy{
		TaxRate:     p.TaxRate,
		DeliveryFee: pricing.FromMinor(p.DeliveryFeePence),
	}
}

// Storefront configures the menu, cart and checkout server.
type Storefront struct {
	Port            string
	FrontendURL     string
	RedisAddr       string // empty keeps carts in memory
	CartTTL         time.Duration
	SessionIdle     time.Duration // how long an untouched cart stays in memory
	CheckoutLogPath string        // empty keeps the checkout log in memory
	PaymentProxyURL string
	GatewayTimeout  time.Duration
	MenuPath        string // empty uses the embedded menu
	Pricing         Pricing
}

// Proxy configures the payment proxy.
type Proxy struct {
	Port                  string
	FrontendURL           string
	StripeSecretKey       string // empty selects the mock provider
	StripeWebhookSecret   string
	StripeAPIURL          string // empty uses api.stripe.com
	Currency              string
	CheckoutLogPath       string
	MockDeclineAbovePence int64
	ShippingCountries     []string
	Pricing               Pricing
}

func LoadStorefront() (*Storefront, error) {
	pr, err := loadPricing()
	if err != nil {
		return nil, err
	}
	ttl, err := getDuration("CART_TTL", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	idle, err := getDuration("SESSION_IDLE_TIMEOUT", min(2*time.Hour, ttl))
	if err != nil {
		return nil, err
	}
	if idle <= 0 {
		return nil, fmt.Errorf("config: SESSION_IDLE_TIMEOUT %s must be positive", idle)
	}
	timeout, err := getDuration("GATEWAY_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	return &Storefront{
		Port:            getEnv("PORT", "8080"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		CartTTL:         ttl,
		SessionIdle:     idle,
		CheckoutLogPath: os.Getenv("CHECKOUT_LOG_PATH"),
		PaymentProxyURL: getEnv("PAYMENT_PROXY_URL", "http://localhost:4242"),
		GatewayTimeout:  timeout,
		MenuPath:        os.Getenv("MENU_PATH"),
		Pricing:         pr,
	}, nil
}

func LoadProxy() (*Proxy, error) {
	pr, err := loadPricing()
	if err != nil {
		return nil, err
	}
	limit, err := getInt("MOCK_DECLINE_ABOVE_PENCE", 50000)
	if err != nil {
		return nil, err
	}
	return &Proxy{
		Port:                  getEnv("PORT", "4242"),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:3000"),
		StripeSecretKey:       os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:   os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripeAPIURL:          os.Getenv("STRIPE_API_URL"),
		Currency:              getEnv("CURRENCY", "gbp"),
		CheckoutLogPath:       os.Getenv("CHECKOUT_LOG_PATH"),
		MockDeclineAbovePence: limit,
		ShippingCountries:     getList("SHIPPING_COUNTRIES", []string{"GB"}),
		Pricing:               pr,
	}, nil
}

func loadPricing() (Pricing, error) {
	rate, err := decimal.NewFromString(getEnv("TAX_RATE", "0.10"))
	if err != nil {
		return Pricing{}, fmt.Errorf("config: TAX_RATE: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Pricing{}, fmt.Errorf("config: TAX_RATE %s outside [0, 1)", rate)
	}
	fee, err := getInt("DELIVERY_FEE_PENCE", 250)
	if err != nil {
		return Pricing{}, err
	}
	if fee < 0 {
		return Pricing{}, fmt.Errorf("config: DELIVERY_FEE_PENCE %d is negative", fee)
	}
	return Pricing{TaxRate: rate, DeliveryFeePence: fee}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getList splits a comma-separated value, dropping empty entries.
func getList(key string, fallback []string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}
