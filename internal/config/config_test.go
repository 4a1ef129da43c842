package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatformRules(t *testing.T) {
	t.Run("defaults keep order and lower-case patterns", func(t *testing.T) {
		rules, err := ParsePlatformRules(defaultPlatforms)
		require.NoError(t, err)
		require.Len(t, rules, 4)

		assert.Equal(t, "UberEats", rules[0].Channel)
		assert.Equal(t, []string{"ubereats", "uber eats"}, rules[0].Patterns)
		assert.Equal(t, "CityHive", rules[3].Channel)
	})

	t.Run("extra platforms without code changes", func(t *testing.T) {
		rules, err := ParsePlatformRules(" Postmates = Postmates , doordash=DoorDash,")
		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, []string{"postmates"}, rules[0].Patterns)
	})

	t.Run("missing channel name is rejected", func(t *testing.T) {
		_, err := ParsePlatformRules("doordash")
		assert.Error(t, err)
	})

	t.Run("empty pattern list is rejected", func(t *testing.T) {
		_, err := ParsePlatformRules("|=DoorDash")
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BUSINESS_TIMEZONE", "America/Chicago")
	t.Setenv("POS_ACCOUNT_ID", "12345")
	t.Setenv("POS_ACCESS_TOKEN", "token")
	t.Setenv("POS_BASE_URL", "https://pos.example.com/API/V3/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Address())
	assert.Equal(t, "America/Chicago", cfg.Location().String())
	assert.Equal(t, "https://pos.example.com/API/V3", cfg.POS.BaseURL)
	assert.True(t, cfg.POS.Enabled())
	assert.Len(t, cfg.Business.DeliveryPlatforms, 4)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("BUSINESS_TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load()
	assert.Error(t, err)
}

func TestPOSConfig_Enabled(t *testing.T) {
	assert.False(t, POSConfig{}.Enabled())
	assert.False(t, POSConfig{Token: "t"}.Enabled())
	assert.True(t, POSConfig{Token: "t", AccountID: "1"}.Enabled())
}

func TestLoad_AllowedOriginsAreTrimmed(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
}

func TestLoad_SlackRequiresSigningSecret(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_SIGNING_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SLACK_SIGNING_SECRET")

	t.Setenv("SLACK_SIGNING_SECRET", "shh")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Slack.Enabled())
}

func TestPOSConfig_FetchBudget(t *testing.T) {
	p := POSConfig{Timeout: 20 * time.Second, RequestsPerSec: 1, MaxPages: 50}
	assert.Equal(t, 70*time.Second, p.FetchBudget())

	p.RequestsPerSec = 4
	assert.Equal(t, 32500*time.Millisecond, p.FetchBudget())
}
