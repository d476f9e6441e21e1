package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	PublicBaseURL     string `mapstructure:"PUBLIC_BASE_URL"`

	// Storage.
	StoreDriver    string `mapstructure:"STORE_DRIVER"` // "mongo" or "memory"
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DatabaseName   string `mapstructure:"DATABASE_NAME"`
	SeedDemoTenant bool   `mapstructure:"SEED_DEMO_TENANT"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisGuardrailDB int    `mapstructure:"REDIS_GUARDRAIL_DB"`
	RedisQueueDB     int    `mapstructure:"REDIS_QUEUE_DB"`

	// Guardrails.
	InboundRateLimit      int           `mapstructure:"INBOUND_RATE_LIMIT"`
	InboundRateWindow     time.Duration `mapstructure:"INBOUND_RATE_WINDOW"`
	MessagingWindow       time.Duration `mapstructure:"MESSAGING_WINDOW"`
	MessagingWindowPolicy string        `mapstructure:"MESSAGING_WINDOW_POLICY"` // "permissive" or "strict"

	// Booking flow.
	CurrencySymbol string `mapstructure:"CURRENCY_SYMBOL"`

	// Payments.
	PaymentProvider        string        `mapstructure:"PAYMENT_PROVIDER"` // "local" or "stripe"
	StripeKey              string        `mapstructure:"STRIPE_KEY"`
	StripeCurrency         string        `mapstructure:"STRIPE_CURRENCY"`
	PaymentReminderEnabled bool          `mapstructure:"PAYMENT_REMINDER_ENABLED"`
	PaymentReminderDelay   time.Duration `mapstructure:"PAYMENT_REMINDER_DELAY"`

	// Outbound messaging.
	MessagingProvider string `mapstructure:"MESSAGING_PROVIDER"` // "twilio" or "log"
	TwilioAPIURL      string `mapstructure:"TWILIO_API_URL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	viper.SetDefault("STORE_DRIVER", "mongo")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "hotelbot")
	viper.SetDefault("SEED_DEMO_TENANT", false)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_GUARDRAIL_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("INBOUND_RATE_LIMIT", 20)
	viper.SetDefault("INBOUND_RATE_WINDOW", "60s")
	viper.SetDefault("MESSAGING_WINDOW", "24h")
	viper.SetDefault("MESSAGING_WINDOW_POLICY", "permissive")
	viper.SetDefault("CURRENCY_SYMBOL", "$")
	viper.SetDefault("PAYMENT_PROVIDER", "local")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("STRIPE_CURRENCY", "usd")
	viper.SetDefault("PAYMENT_REMINDER_ENABLED", true)
	viper.SetDefault("PAYMENT_REMINDER_DELAY", "2h")
	viper.SetDefault("MESSAGING_PROVIDER", "twilio")
	viper.SetDefault("TWILIO_API_URL", "https://api.twilio.com")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Warnings lists setting combinations that work but behave differently than they would
// in production.
func (c Config) Warnings() []string {
	var out []string
	if c.StoreDriver == "memory" && c.PaymentProvider == "stripe" {
		out = append(out, "memory store with stripe payments: every booking confirmation blocks all store writes while Stripe is called")
	}
	if c.StoreDriver == "memory" && c.PaymentReminderEnabled {
		out = append(out, "memory store runs without Redis: payment reminders are disabled")
	}
	return out
}

// UseMemoryStore reports whether repositories should run without MongoDB.
func UseMemoryStore() bool {
	return AppConfig.StoreDriver == "memory"
}
