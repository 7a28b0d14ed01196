// Package config provides runtime configuration for the checkout service.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all knobs the service needs at startup. It is built once in main
// and passed to components explicitly; nothing reads the environment after Load.
type Config struct {
	ServiceName string
	Env         string

	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Currency is the ISO 4217 code applied to every line item.
	Currency string

	// WebhookSecret signs and verifies payment completion notifications.
	WebhookSecret string
	// WebhookTolerance bounds the age of an accepted notification timestamp.
	WebhookTolerance time.Duration

	SuccessURL           string
	CancelURL            string
	OnboardingReturnURL  string
	OnboardingRefreshURL string

	// DecrementMaxRetries bounds compare-and-swap retries per item during
	// inventory reconciliation.
	DecrementMaxRetries int
}

// Load collects configuration from the environment with defaults. A .env file
// is honored when present so local runs do not need exported variables.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ServiceName:          getenv("SERVICE_NAME", "marketplace-checkout"),
		Env:                  getenv("ENV", "dev"),
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout:      durenvs("SHUTDOWN_TIMEOUT", 10),
		Currency:             getenv("CURRENCY", "eur"),
		WebhookSecret:        getenv("WEBHOOK_SECRET", "whsec_dev"),
		WebhookTolerance:     durenvs("WEBHOOK_TOLERANCE", 300),
		SuccessURL:           getenv("SUCCESS_URL", "https://shop.example.com/success"),
		CancelURL:            getenv("CANCEL_URL", "https://shop.example.com/cancel"),
		OnboardingReturnURL:  getenv("ONBOARDING_RETURN_URL", "https://shop.example.com/onboarding-success"),
		OnboardingRefreshURL: getenv("ONBOARDING_REFRESH_URL", "https://shop.example.com/reauth"),
		DecrementMaxRetries:  atoienv("DECREMENT_MAX_RETRIES", 5),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}
