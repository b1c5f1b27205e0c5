package config

import (
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds all configuration for the invoicing service
type Config struct {
	// Server
	Port        string
	Environment string

	// Redis (idempotency store)
	RedisURL string

	// Stripe webhook verification
	StripeWebhookSecret string

	SmartBill SmartBillConfig
	Invoice   InvoiceConfig
	Retry     RetryConfig
	SMTP      SMTPConfig
	Nominatim NominatimConfig

	// Optional ops webhook for operator alerts; alerts fall back to logs
	// when unset.
	AlertWebhookURL string
}

// SmartBillConfig carries the billing API credentials and endpoint.
type SmartBillConfig struct {
	Username string
	Token    string
	Endpoint string
}

// InvoiceConfig holds the fixed fields copied verbatim into every assembled
// invoice, plus the test-mode flag. In test mode the payment section is
// omitted and a created invoice is deleted right away as a round-trip check.
type InvoiceConfig struct {
	CompanyVatCode    string
	SeriesName        string
	MeasuringUnitName string
	Currency          string
	TaxName           string
	TaxPercentage     float64
	SaveToDb          bool
	IsService         bool
	IsTaxIncluded     bool
	TestMode          bool
}

// RetryConfig bounds the billing client's retry policy.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// SMTPConfig configures outbound confirmation email.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Password string
	UseTLS   bool
}

// NominatimConfig configures the geocoding provider.
type NominatimConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	config := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		SmartBill: SmartBillConfig{
			Username: getEnv("SMARTBILL_USERNAME", ""),
			Token:    getEnv("SMARTBILL_TOKEN", ""),
			Endpoint: getEnv("SMARTBILL_INVOICE_ENDPOINT", "https://ws.smartbill.ro/SBORO/api/invoice"),
		},

		Invoice: InvoiceConfig{
			CompanyVatCode:    getEnv("COMPANY_VAT_CODE", "40670956"),
			SeriesName:        getEnv("INVOICE_SERIES_NAME", "RO"),
			MeasuringUnitName: getEnv("MEASURING_UNIT_NAME", "buc"),
			Currency:          getEnv("INVOICE_CURRENCY", "RON"),
			TaxName:           getEnv("TAX_NAME", "Normala"),
			TaxPercentage:     getEnvFloat("TAX_PERCENTAGE", 19),
			SaveToDb:          getEnvBool("INVOICE_SAVE_TO_DB", false),
			IsService:         getEnvBool("INVOICE_IS_SERVICE", true),
			IsTaxIncluded:     getEnvBool("INVOICE_TAX_INCLUDED", false),
			TestMode:          getEnvBool("TEST_MODE", false),
		},

		Retry: RetryConfig{
			MaxAttempts: getEnvInt("SMARTBILL_RETRY_MAX_ATTEMPTS", 5),
			BaseDelay:   getEnvDuration("SMARTBILL_RETRY_BASE_DELAY", 2*time.Second),
			MaxDelay:    getEnvDuration("SMARTBILL_RETRY_MAX_DELAY", 10*time.Second),
		},

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvInt("SMTP_PORT", 587),
			From:     getEnv("SMTP_FROM", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			UseTLS:   getEnvBool("SMTP_USE_TLS", true),
		},

		Nominatim: NominatimConfig{
			BaseURL:   getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
			UserAgent: getEnv("NOMINATIM_USER_AGENT", "invoicing-service (ops@pinelines.eu)"),
			Timeout:   getEnvDuration("NOMINATIM_TIMEOUT", 5*time.Second),
		},

		AlertWebhookURL: getEnv("ALERT_WEBHOOK_URL", ""),
	}

	// Validate required fields
	if config.StripeWebhookSecret == "" {
		log.Fatal("STRIPE_WEBHOOK_SECRET is required")
	}

	return config
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid bool for %s: %q (using default)", key, value)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid int for %s: %q (using default)", key, value)
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: invalid float for %s: %q (using default)", key, value)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid duration for %s: %q (using default)", key, value)
		return defaultValue
	}
	return parsed
}
