package config

import (
	"strings"
	"testing"

	"github.com/assistflowpro-cyber/assistflow-backend/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func setRequiredEnv(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", testKey)
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("PUBLIC_BASE_URL", "https://api.example.com/")
	t.Setenv("FRONTEND_URL", "https://app.example.com")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DATABASE_URL", ":memory:")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/api/calendars/callback", cfg.GoogleAPI.RedirectURI)
	assert.Equal(t, "https://app.example.com", cfg.App.FrontendURL)
	assert.Equal(t, "@every 30m", cfg.Calendar.SyncCron)
	assert.False(t, cfg.Calendar.RefreshBeforeSync)
	assert.False(t, cfg.Redis.Enabled())

	got, err := GetSafe()
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("FRONTEND_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.App.Port)
	assert.Equal(t, "http://localhost:5173", cfg.App.FrontendURL)
}

func TestLoad_ExplicitRedirectWins(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_REDIRECT_URI", "https://other.example.com/cb")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.com/cb", cfg.GoogleAPI.RedirectURI)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_CLIENT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrConfiguration))
	assert.True(t, strings.Contains(err.Error(), "GOOGLE_CLIENT_SECRET"))
}

func TestLoad_BadEncryptionKey(t *testing.T) {
	for _, key := range []string{"abc", "zz" + testKey[2:], testKey[:62]} {
		setRequiredEnv(t)
		t.Setenv("ENCRYPTION_KEY", key)

		_, err := Load()
		require.Error(t, err, key)
		assert.True(t, errors.HasCode(err, errors.ErrConfiguration))
	}
}

func TestLoad_UnsupportedDriver(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrConfiguration))
}
