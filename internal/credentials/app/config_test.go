package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("log-level", "info", "")
	fs.String("log-format", "json", "")
	fs.Int("port", 8080, "")
	return fs
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Equal(t, "log", cfg.Mail.Driver)
	require.Equal(t, uint64(3), cfg.Mail.MaxRetries)
	require.Equal(t, 500*time.Millisecond, cfg.Mail.RetryBaseDelay)
	require.True(t, cfg.Mail.RequireTLS)
	require.Equal(t, 10*time.Second, cfg.Mail.Timeout)
	require.Equal(t, "http://127.0.0.1:8080/confirmation", cfg.ConfirmationURL)
}

func TestLoadConfigLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9000
log_level: debug
portal_url: https://portal.example.com
mail:
  driver: smtp
  host: smtp.example.com
  port: 2525
`), 0o600))

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		require.Equal(t, 9000, cfg.Port)
		require.Equal(t, "debug", cfg.LogLevel)
		require.Equal(t, "https://portal.example.com", cfg.PortalURL)
		require.Equal(t, "smtp", cfg.Mail.Driver)
		require.Equal(t, 2525, cfg.Mail.Port)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("PORT", "9100")
		t.Setenv("TRIVIA_MAIL_HOST", "relay.example.com")
		t.Setenv("TRIVIA_TOKEN_TTL", "48h")
		t.Setenv("TRIVIA_NOT_A_KEY", "ignored")
		t.Setenv("TRIVIA_MAIL_REQUIRE_TLS", "false")
		t.Setenv("TRIVIA_MAIL_TIMEOUT", "3s")
		t.Setenv("TRIVIA_PORTAL_URL", "")

		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		require.Equal(t, 9100, cfg.Port)
		require.Equal(t, "relay.example.com", cfg.Mail.Host)
		require.Equal(t, 48*time.Hour, cfg.TokenTTL)
		require.False(t, cfg.Mail.RequireTLS)
		require.Equal(t, 3*time.Second, cfg.Mail.Timeout)
		require.Equal(t, "https://portal.example.com", cfg.PortalURL, "empty variables are ignored")
	})

	t.Run("changed flags over env", func(t *testing.T) {
		t.Setenv("PORT", "9100")
		t.Setenv("LOG_LEVEL", "warn")

		fs := testFlags()
		require.NoError(t, fs.Parse([]string{"--port=9200"}))

		cfg, err := LoadConfig(path, fs)
		require.NoError(t, err)
		require.Equal(t, 9200, cfg.Port)
		require.Equal(t, "warn", cfg.LogLevel, "unchanged flags do not override")
	})
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"PORT", "port"},
		{"LOG_LEVEL", "log_level"},
		{"HOUSEKEEPING_INTERVAL", "housekeeping_interval"},
		{"TRIVIA_SESSION_SECRET", "session_secret"},
		{"TRIVIA_MAIL_HOST", "mail.host"},
		{"TRIVIA_MAIL_MAX_RETRIES", "mail.max_retries"},
		{"TRIVIA_", ""},
		{"HOME", ""},
		{"MAIL_HOST", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, envKey(tt.name))
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	base, err := LoadConfig("", nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"secret required in prod", func(c *Config) { c.Env = "prod" }},
		{"port out of range", func(c *Config) { c.Port = 70000 }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"unknown mail driver", func(c *Config) { c.Mail.Driver = "pigeon" }},
		{"smtp without host", func(c *Config) { c.Mail.Driver = "smtp" }},
		{"no confirmation url", func(c *Config) { c.ConfirmationURL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			oopsErr, ok := oops.AsOops(err)
			require.True(t, ok)
			require.Equal(t, "CONFIG_INVALID", oopsErr.Code())
		})
	}

	prod := base
	prod.Env = "prod"
	prod.SessionSecret = "s3cret"
	require.NoError(t, prod.Validate())
}
