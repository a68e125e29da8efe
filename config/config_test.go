package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("FRONTEND_URL", "http://localhost:3000/")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestLoadConfig_ParsesListsAndNumbers(t *testing.T) {
	t.Setenv("SUPERADMIN_EMAILS", " Root@X.edu , ops@x.edu,")
	t.Setenv("REGISTRATION_CACHE_TTL_SECONDS", "120")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("RATE_LIMIT_AUTH_THRESHOLD", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"root@x.edu", "ops@x.edu"}, cfg.SuperadminEmails)
	assert.Equal(t, 120, cfg.RegistrationCacheTTLSeconds)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, 10, cfg.RateLimitAuthThreshold)
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate())

	cfg.SessionSecret = "short"
	assert.Error(t, cfg.Validate())

	cfg.SessionSecret = strings.Repeat("s", 32)
	assert.NoError(t, cfg.Validate())
}
