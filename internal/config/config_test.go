package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(lookupFrom(map[string]string{"APP_PORT": "8080", "JWT_SECRET": "x"}))
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "percent", cfg.FeeRule)
	assert.Equal(t, 10, cfg.FeePercent)
	assert.Equal(t, 3*time.Second, cfg.PaymentDelay)
	assert.Equal(t, "memory", cfg.DraftStore)
	assert.Equal(t, "memory", cfg.BookingStore)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL())
	assert.False(t, cfg.EventsEnabled)
	assert.Equal(t, "logs/booking.log", cfg.BookingLogPath)
}

func TestParseRequired(t *testing.T) {
	_, err := Parse(lookupFrom(map[string]string{"APP_PORT": "8080"}))
	assert.ErrorContains(t, err, "JWT_SECRET")

	_, err = Parse(lookupFrom(map[string]string{
		"APP_PORT": "8080", "JWT_SECRET": "x", "BOOKING_STORE": "mysql",
	}))
	assert.ErrorContains(t, err, "DB_USER")
}

func TestParseDatabase(t *testing.T) {
	cfg, err := Parse(lookupFrom(map[string]string{
		"APP_PORT": "8080", "JWT_SECRET": "x", "BOOKING_STORE": "mysql",
		"DB_USER": "app", "DB_HOST": "db", "DB_NAME": "cinema",
		"DB_MAX_OPEN_CONNS": "10", "DB_MAX_IDLE_CONNS": "4",
	}))
	require.NoError(t, err)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, 10, cfg.DBMaxOpenConns)
	assert.Equal(t, 4, cfg.DBMaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.DBConnMaxLifetime)
	assert.Equal(t, 5*time.Second, cfg.DBPingTimeout)
}

func TestParseInvalid(t *testing.T) {
	base := map[string]string{"APP_PORT": "8080", "JWT_SECRET": "x"}
	tests := map[string]map[string]string{
		"bad int":         {"FEE_PERCENT": "ten"},
		"bad duration":    {"PAYMENT_DELAY": "soon"},
		"bad draft store": {"DRAFT_STORE": "disk"},
		"timeout":         {"PAYMENT_DELAY": "5s", "PAYMENT_TIMEOUT": "1s"},
		"admin password":  {"ADMIN_EMAIL": "admin@example.com"},
		"idle over open": {
			"BOOKING_STORE": "mysql", "DB_USER": "app", "DB_HOST": "db", "DB_NAME": "cinema",
			"DB_MAX_OPEN_CONNS": "2", "DB_MAX_IDLE_CONNS": "5",
		},
	}
	for name, extra := range tests {
		t.Run(name, func(t *testing.T) {
			env := map[string]string{}
			for k, v := range base {
				env[k] = v
			}
			for k, v := range extra {
				env[k] = v
			}
			_, err := Parse(lookupFrom(env))
			assert.Error(t, err)
		})
	}
}

func TestRateLimitNormalize(t *testing.T) {
	c := RateLimitConfig{RefillInterval: 2 * time.Second}.normalize()
	assert.Equal(t, 1, c.Capacity)
	assert.Equal(t, 1, c.RefillTokens)
	assert.Equal(t, 10*time.Second, c.TTL)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "1m")
	c := LoadCacheConfig()
	assert.True(t, c.Methods["GET"])
	assert.True(t, c.Methods["HEAD"])
	assert.Equal(t, time.Minute, c.TTL)
}
