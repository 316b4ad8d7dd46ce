package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	CartTTL       time.Duration

	CheckoutBaseURL    string
	CheckoutSecretKey  string
	CheckoutSuccessURL string
	CheckoutCancelURL  string

	ReservationExpiryMinutes int
	ReservationSweepInterval time.Duration

	RescheduleTokenSecret string
	RescheduleTokenTTL    time.Duration
	RescheduleConcurrency int

	BannerTTL           time.Duration
	RescheduleBannerTTL time.Duration

	AdminJWTSecret string

	PublicRateLimit float64
	PublicRateBurst int

	// SendGrid Email Configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CartTTL:       getEnvAsDuration("CART_TTL", 72*time.Hour),

		CheckoutBaseURL:    getEnv("CHECKOUT_BASE_URL", ""),
		CheckoutSecretKey:  getEnv("CHECKOUT_SECRET_KEY", ""),
		CheckoutSuccessURL: getEnv("CHECKOUT_SUCCESS_URL", ""),
		CheckoutCancelURL:  getEnv("CHECKOUT_CANCEL_URL", ""),

		ReservationExpiryMinutes: getEnvAsInt("RESERVATION_EXPIRY_MINUTES", 30),
		ReservationSweepInterval: getEnvAsDuration("RESERVATION_SWEEP_INTERVAL", 5*time.Minute),

		RescheduleTokenSecret: getEnv("RESCHEDULE_TOKEN_SECRET", ""),
		RescheduleTokenTTL:    getEnvAsDuration("RESCHEDULE_TOKEN_TTL", 30*24*time.Hour),
		RescheduleConcurrency: getEnvAsInt("RESCHEDULE_CONCURRENCY", 4),

		BannerTTL:           getEnvAsDuration("BANNER_TTL", 3*time.Second),
		RescheduleBannerTTL: getEnvAsDuration("RESCHEDULE_BANNER_TTL", 5*time.Second),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		PublicRateLimit: getEnvAsFloat("PUBLIC_RATE_LIMIT", 5),
		PublicRateBurst: getEnvAsInt("PUBLIC_RATE_BURST", 20),

		// SendGrid Email Configuration
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "LSAT Prep"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
