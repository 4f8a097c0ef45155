package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Database URL")
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/billing")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("MERCHANT_ACCOUNT_ID", "")
	t.Setenv("MERCHANT_TIME_ZONE", "")
	t.Setenv("PORT", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPPort, cfg.HTTPPort)
	assert.Equal(t, DefaultMerchantTimeZone, cfg.MerchantTimeZone)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.MerchantAccountID)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/billing")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("MERCHANT_ACCOUNT_ID", "acct_main")
	t.Setenv("MERCHANT_TIME_ZONE", "Pacific Time (US & Canada)")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "acct_main", cfg.MerchantAccountID)
	assert.Equal(t, "Pacific Time (US & Canada)", cfg.MerchantTimeZone)
	assert.Equal(t, "9090", cfg.HTTPPort)
}
