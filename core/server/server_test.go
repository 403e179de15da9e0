package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/assistflowpro-cyber/assistflow-backend/core/cache"
	"github.com/assistflowpro-cyber/assistflow-backend/core/config"
	"github.com/assistflowpro-cyber/assistflow-backend/core/database"
	"github.com/assistflowpro-cyber/assistflow-backend/core/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func testConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: database.DriverSQLite, DSN: ":memory:", AutoMigrate: true},
		Security: config.SecurityConfig{EncryptionKey: testKey},
		Calendar: config.CalendarConfig{LockTTLSeconds: 60, LockWaitSeconds: 1},
	}
}

func TestNewEcho_RequestID(t *testing.T) {
	e := NewEcho()
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 12)
}

func TestNewEcho_RecoversPanics(t *testing.T) {
	e := NewEcho()
	e.GET("/boom", func(c echo.Context) error { panic("boom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNewInfra_LocalLockerWithoutRedis(t *testing.T) {
	infra, err := NewInfra(context.Background(), testConfig())
	require.NoError(t, err)
	defer infra.Close()

	assert.Nil(t, infra.Redis)
	assert.IsType(t, &cache.LocalLocker{}, infra.Locker)

	enc, err := infra.Cipher.Encrypt("token")
	require.NoError(t, err)
	dec, err := infra.Cipher.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "token", dec)
}

func TestNewInfra_RedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Redis = config.RedisConfig{Addr: mr.Addr()}

	infra, err := NewInfra(context.Background(), cfg)
	require.NoError(t, err)
	defer infra.Close()

	require.NotNil(t, infra.Redis)
	assert.IsType(t, &cache.RedisLocker{}, infra.Locker)

	lock, err := infra.Locker.Acquire(context.Background(), "calendar:google:u1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:calendar:google:u1"))
	require.NoError(t, lock.Release(context.Background()))
}

func TestNewInfra_BadKey(t *testing.T) {
	cfg := testConfig()
	cfg.Security.EncryptionKey = "abcd"

	_, err := NewInfra(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrConfiguration))
}

func TestNewInfra_RedisUnreachable(t *testing.T) {
	cfg := testConfig()
	cfg.Redis = config.RedisConfig{Addr: "127.0.0.1:1"}

	_, err := NewInfra(context.Background(), cfg)
	assert.Error(t, err)
}
