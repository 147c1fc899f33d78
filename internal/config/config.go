package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPAddr string
	LogLevel string

	// Upstream TAMU services.
	APIBaseURL        string
	AuthBaseURL       string
	RealtimeURL       string
	RealtimePath      string
	APIRequestTimeout time.Duration

	JWTSecret          string
	CorsAllowedOrigins []string

	// Payment confirmation polling.
	PaymentPollBudget  time.Duration
	PaymentPollInitial time.Duration
	PaymentPollMax     time.Duration
	PaymentPollFactor  float64

	// Fallback re-fetch intervals while the realtime connection is down.
	OrderPollInterval       time.Duration
	ReservationPollInterval time.Duration
}

func Load() Config {
	env := getEnv("APP_ENV", "development")

	cfg := Config{
		Env:               env,
		HTTPAddr:          getEnv("HTTP_ADDR", ":8090"),
		LogLevel:          getEnv("LOG_LEVEL", ""),
		APIBaseURL:        getEnv("TAMU_API_BASE_URL", defaultAPIBase(env)),
		AuthBaseURL:       getEnv("TAMU_AUTH_BASE_URL", defaultAuthBase(env)),
		RealtimeURL:       getEnv("TAMU_REALTIME_URL", defaultRealtimeBase(env)),
		RealtimePath:      getEnv("TAMU_REALTIME_PATH", "/realtime"),
		APIRequestTimeout: getEnvDuration("TAMU_API_TIMEOUT", 15*time.Second),

		JWTSecret:          getEnv("JWT_SECRET", ""),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		PaymentPollBudget:  getEnvDuration("PAYMENT_POLL_BUDGET", 60*time.Second),
		PaymentPollInitial: getEnvDuration("PAYMENT_POLL_INITIAL", 1200*time.Millisecond),
		PaymentPollMax:     getEnvDuration("PAYMENT_POLL_MAX", 5*time.Second),
		PaymentPollFactor:  getEnvFloat("PAYMENT_POLL_FACTOR", 1.3),

		OrderPollInterval:       getEnvDuration("ORDER_POLL_INTERVAL", 8*time.Second),
		ReservationPollInterval: getEnvDuration("RESERVATION_POLL_INTERVAL", 10*time.Second),
	}

	if cfg.PaymentPollFactor <= 1 {
		cfg.PaymentPollFactor = 1.3
	}
	if cfg.PaymentPollInitial <= 0 {
		cfg.PaymentPollInitial = 1200 * time.Millisecond
	}
	if cfg.PaymentPollMax < cfg.PaymentPollInitial {
		cfg.PaymentPollMax = cfg.PaymentPollInitial
	}

	return cfg
}

// Explicit env always wins; these only select the profile default, mirroring the
// dev/prod discrimination the hosted frontend did by hostname.
func defaultAPIBase(env string) string {
	if env == "production" {
		return "https://api.tamu.app"
	}
	return "http://localhost:4000"
}

func defaultAuthBase(env string) string {
	if env == "production" {
		return "https://auth.tamu.app"
	}
	return "http://localhost:4001"
}

func defaultRealtimeBase(env string) string {
	if env == "production" {
		return "wss://api.tamu.app"
	}
	return "ws://localhost:4000"
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getEnvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
