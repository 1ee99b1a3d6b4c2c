package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, uint(5), cfg.RateLimit)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, time.Hour, cfg.TokenLifetime)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowOrigins)
}

func TestFromViper_Overrides(t *testing.T) {
	v := New()
	v.Set("PORT", 9000)
	v.Set("ALLOW_ORIGIN", "https://a.example, https://b.example,")
	v.Set("RATE_LIMIT_REQUESTS_PER_SECOND", -3)
	v.Set("TOKEN_LIFETIME", "30m")

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins)
	assert.Equal(t, uint(5), cfg.RateLimit)
	assert.Equal(t, 30*time.Minute, cfg.TokenLifetime)
}

func TestFromViper_InvalidPort(t *testing.T) {
	v := New()
	v.Set("PORT", 0)

	_, err := FromViper(v)
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "localhost", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "db"}
	dsn, err := cfg.DSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost:5432/db?sslmode=disable", dsn)

	cfg = &Config{UseConnString: true, DBConnString: "host=x"}
	dsn, err = cfg.DSN()
	require.NoError(t, err)
	assert.Equal(t, "host=x", dsn)

	_, err = (&Config{UseConnString: true}).DSN()
	assert.Error(t, err)

	_, err = (&Config{DBHost: "localhost"}).DSN()
	assert.Error(t, err)
}
