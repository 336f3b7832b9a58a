package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/mc-auth/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("DB_DRIVER", "")

	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "sqlite3", c.GetDBDriver())
	require.Equal(t, 24*time.Hour, c.GetDecisionWindow())
	require.Equal(t, 5*time.Minute, c.GetExchangeWindow())
	require.Equal(t, time.Hour, c.GetAccessTokenExpiry())
	require.Equal(t, time.Hour, c.GetReaperInterval())
	require.Empty(t, c.GetAccessTokenPrefix())
}

func TestFromEnvironment(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("ENV", "prod")
	t.Setenv("BASE_URL", "https://mc-auth.example/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ACCESS_TOKEN_PREFIX", "mcauth_A_")
	t.Setenv("REAPER_INTERVAL", "15m")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/mcauth?sslmode=disable")
	t.Setenv("SESSION_SECRET", "shh")

	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, "PROD", c.GetEnv())
	require.Equal(t, "https://mc-auth.example", c.GetBaseURL())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://b.example"))
	require.False(t, c.GetAllowedOrigins().IsAllowedOrigin("https://c.example"))
	require.Equal(t, "mcauth_A_", c.GetAccessTokenPrefix())
	require.Equal(t, 15*time.Minute, c.GetReaperInterval())
	require.Equal(t, "postgres", c.GetDBDriver())
	require.Equal(t, []byte("shh"), c.GetSessionSecret())
}

func TestInvalidDuration(t *testing.T) {
	t.Setenv("REAPER_INTERVAL", "soon")
	_, err := config.New()
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse env")
}
