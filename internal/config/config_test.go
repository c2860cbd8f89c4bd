package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GIN_MODE", "release")
	t.Setenv("FIREBASE_PROJECT_ID", "gallery-test")
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "e30=")
	t.Setenv("FIREBASE_STORAGE_BUCKET", "gallery-test.appspot.com")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	t.Setenv("CLIENT_URL", "http://localhost:3000")
}

func TestLoadFromEnvironment(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gallery-test", cfg.FirebaseProjectID)
	assert.Equal(t, "whsec_test", cfg.StripeWebhookSecret)
	assert.Equal(t, 72*time.Hour, cfg.WebhookEventTTL)
	assert.Empty(t, cfg.RedisURL)
	assert.True(t, cfg.IsRelease())
}

func TestLoadOverridesDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("WEBHOOK_EVENT_TTL", "24h")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.WebhookEventTTL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoadFromConfigFile(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`FIREBASE_PROJECT_ID: from-file
FIREBASE_USE_ADC: true
FIREBASE_STORAGE_BUCKET: from-file.appspot.com
STRIPE_SECRET_KEY: sk_test_file
STRIPE_WEBHOOK_SECRET: whsec_file
CLIENT_URL: https://gallery.example.com
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.FirebaseProjectID)
	assert.True(t, cfg.FirebaseUseADC)
	assert.Equal(t, "https://gallery.example.com", cfg.ClientURL)
}

func TestValidate(t *testing.T) {
	valid := Config{
		FirebaseProjectID:            "p",
		GoogleApplicationCredentials: "/tmp/creds.json",
		FirebaseStorageBucket:        "b",
		StripeSecretKey:              "sk",
		StripeWebhookSecret:          "whsec",
		ClientURL:                    "http://localhost",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"missing project", func(c *Config) { c.FirebaseProjectID = "" }, "FIREBASE_PROJECT_ID"},
		{"missing credentials", func(c *Config) { c.GoogleApplicationCredentials = "" }, "GOOGLE_APPLICATION_CREDENTIALS"},
		{"missing bucket", func(c *Config) { c.FirebaseStorageBucket = "" }, "FIREBASE_STORAGE_BUCKET"},
		{"missing stripe key", func(c *Config) { c.StripeSecretKey = "" }, "STRIPE_SECRET_KEY"},
		{"missing webhook secret", func(c *Config) { c.StripeWebhookSecret = "" }, "STRIPE_WEBHOOK_SECRET"},
		{"missing client url", func(c *Config) { c.ClientURL = "" }, "CLIENT_URL"},
		{"negative ttl", func(c *Config) { c.WebhookEventTTL = -time.Second }, "WEBHOOK_EVENT_TTL"},
		{"zero ttl with redis", func(c *Config) {
			c.RedisURL = "redis://localhost:6379/0"
			c.WebhookEventTTL = 0
		}, "WEBHOOK_EVENT_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRejectsZeroLedgerTTL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("WEBHOOK_EVENT_TTL", "0s")

	_, err := load(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEBHOOK_EVENT_TTL")
}
