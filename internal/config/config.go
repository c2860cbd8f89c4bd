package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string        `mapstructure:"PORT"`
	GinMode                          string        `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string        `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string        `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string        `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	FirebaseUseADC                   bool          `mapstructure:"FIREBASE_USE_ADC"`
	FirebaseStorageBucket            string        `mapstructure:"FIREBASE_STORAGE_BUCKET"`
	StripeSecretKey                  string        `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret              string        `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripeAPIURL                     string        `mapstructure:"STRIPE_API_URL"`
	ClientURL                        string        `mapstructure:"CLIENT_URL"`
	RedisURL                         string        `mapstructure:"REDIS_URL"`
	WebhookEventTTL                  time.Duration `mapstructure:"WEBHOOK_EVENT_TTL"`
}

var envKeys = []string{
	"PORT",
	"GIN_MODE",
	"FIREBASE_PROJECT_ID",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"FIREBASE_USE_ADC",
	"FIREBASE_STORAGE_BUCKET",
	"STRIPE_SECRET_KEY",
	"STRIPE_WEBHOOK_SECRET",
	"STRIPE_API_URL",
	"CLIENT_URL",
	"REDIS_URL",
	"WEBHOOK_EVENT_TTL",
}

// LoadConfig loads configuration from environment variables and, when
// CONFIG_FILE is set, from that file. Outside release mode a local .env file
// is loaded first if present.
func LoadConfig() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if !strings.EqualFold(v.GetString("GIN_MODE"), "release") {
		// Missing .env is normal in CI and containers.
		_ = godotenv.Load()
	}

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("FIREBASE_USE_ADC", false)
	v.SetDefault("WEBHOOK_EVENT_TTL", 72*time.Hour)

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every required setting is present.
func (c *Config) Validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.GoogleApplicationCredentials == "" && c.FirebaseServiceAccountJSONBase64 == "" && !c.FirebaseUseADC {
		return errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required (or set FIREBASE_USE_ADC=true)")
	}
	if c.FirebaseStorageBucket == "" {
		return errors.New("FIREBASE_STORAGE_BUCKET is required")
	}
	if c.StripeSecretKey == "" {
		return errors.New("STRIPE_SECRET_KEY is required")
	}
	if c.StripeWebhookSecret == "" {
		return errors.New("STRIPE_WEBHOOK_SECRET is required")
	}
	if c.ClientURL == "" {
		return errors.New("CLIENT_URL is required")
	}
	if c.WebhookEventTTL < 0 {
		return errors.New("WEBHOOK_EVENT_TTL must not be negative")
	}
	if c.RedisURL != "" && c.WebhookEventTTL == 0 {
		// A zero TTL would make ledger keys permanent.
		return errors.New("WEBHOOK_EVENT_TTL must be positive when REDIS_URL is set")
	}
	return nil
}

// IsRelease reports whether gin should run in release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}
