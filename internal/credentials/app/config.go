package app

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

type Config struct {
	Env                  string        `koanf:"env"`                   // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        `koanf:"log_level"`             // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        `koanf:"log_format"`            // Log format (json, text) (default: json)
	Port                 int           `koanf:"port"`                  // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration `koanf:"shutdown_grace_period"` // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration `koanf:"housekeeping_interval"` // Housekeeping interval (default: 1h)

	DatabaseFile string `koanf:"database_file"` // SQLite database file (default: ./credentials.db)

	SessionSecret string        `koanf:"session_secret"` // Required outside dev: HMAC key for the session cookie
	SessionTTL    time.Duration `koanf:"session_ttl"`    // Session lifetime (default: 24h)
	CookieSecure  bool          `koanf:"cookie_secure"`  // Mark the session cookie Secure (default: false)

	BcryptCost      int `koanf:"bcrypt_cost"`      // bcrypt work factor (default: 10)
	HashConcurrency int `koanf:"hash_concurrency"` // Concurrent bcrypt operations (default: GOMAXPROCS)

	HomeURL               string        `koanf:"home_url"`                // Link to the site in emails
	ConfirmationURL       string        `koanf:"confirmation_url"`        // Base of confirmation links; the token is appended
	PortalURL             string        `koanf:"portal_url"`              // Redirect target after a successful confirmation
	TokenTTL              time.Duration `koanf:"token_ttl"`               // Maximum age of a redeemable token (0 disables)
	TokenRetention        time.Duration `koanf:"token_retention"`         // Age after which housekeeping prunes tokens (0 keeps them)
	ExposeConfirmationURL bool          `koanf:"expose_confirmation_url"` // Return the link from register (dev and e2e only)

	Mail MailConfig `koanf:"mail"`
}

type MailConfig struct {
	Driver         string        `koanf:"driver"`           // smtp or log (default: log)
	From           string        `koanf:"from"`             // Sender address
	Subject        string        `koanf:"subject"`          // Confirmation subject (default: templates' subject)
	Host           string        `koanf:"host"`             // SMTP relay host
	Port           int           `koanf:"port"`             // SMTP relay port (default: 587)
	Username       string        `koanf:"username"`         // SMTP username; PLAIN auth when set
	Password       string        `koanf:"password"`         // SMTP password
	RequireTLS     bool          `koanf:"require_tls"`      // Refuse relays without STARTTLS (default: true)
	Timeout        time.Duration `koanf:"timeout"`          // Bound on one delivery attempt (default: 10s)
	MaxRetries     uint64        `koanf:"max_retries"`      // Delivery retries after the first attempt (default: 3)
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"` // First backoff step (default: 500ms)
}

func defaults() map[string]any {
	return map[string]any{
		"env":                     "dev",
		"log_level":               "info",
		"log_format":              "json",
		"port":                    8080,
		"shutdown_grace_period":   "10s",
		"housekeeping_interval":   "1h",
		"database_file":           "credentials.db",
		"session_secret":          "",
		"session_ttl":             "24h",
		"cookie_secure":           false,
		"bcrypt_cost":             10,
		"hash_concurrency":        0,
		"home_url":                "http://127.0.0.1:8080",
		"confirmation_url":        "http://127.0.0.1:8080/confirmation",
		"portal_url":              "/",
		"token_ttl":               "0s",
		"token_retention":         "720h",
		"expose_confirmation_url": false,
		"mail.driver":             "log",
		"mail.from":               "Famous Trivia <no-reply@trivia.localhost>",
		"mail.subject":            "",
		"mail.host":               "",
		"mail.port":               587,
		"mail.username":           "",
		"mail.password":           "",
		"mail.require_tls":        true,
		"mail.timeout":            "10s",
		"mail.max_retries":        3,
		"mail.retry_base_delay":   "500ms",
	}
}

// envKeys are the unprefixed variables shared with the other services.
// Everything else is read from TRIVIA_<KEY>, with MAIL_ selecting the
// mail section, e.g. TRIVIA_MAIL_HOST.
var envKeys = map[string]string{
	"ENV":                   "env",
	"LOG_LEVEL":             "log_level",
	"LOG_FORMAT":            "log_format",
	"PORT":                  "port",
	"SHUTDOWN_GRACE_PERIOD": "shutdown_grace_period",
	"HOUSEKEEPING_INTERVAL": "housekeeping_interval",
}

const envPrefix = "TRIVIA_"

// LoadConfig layers defaults, the optional YAML file at path, environment
// variables and finally the flags the user actually set.
func LoadConfig(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	for key, val := range defaults() {
		if err := k.Set(key, val); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").With("key", key).Wrap(err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").With("path", path).Wrapf(err, "load config file")
		}
	}

	if err := k.Load(envProvider(k), nil); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrapf(err, "load environment")
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !k.Exists(key) {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").Wrapf(err, "load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrapf(err, "decode config")
	}
	return cfg, cfg.Validate()
}

// envProvider reads the environment into k. The transform maps each
// variable onto an existing key and drops everything else, so a typo never
// creates a stray key.
func envProvider(k *koanf.Koanf) *env.Env {
	return env.Provider(".", env.Opt{
		TransformFunc: func(name, val string) (string, any) {
			if val == "" {
				return "", nil
			}
			key := envKey(name)
			if key == "" || !k.Exists(key) {
				return "", nil
			}
			return key, val
		},
	})
}

// envKey maps a variable name to its config key, or "" when the name is
// not one of ours.
func envKey(name string) string {
	if key, ok := envKeys[name]; ok {
		return key
	}
	rest, ok := strings.CutPrefix(name, envPrefix)
	if !ok || rest == "" {
		return ""
	}
	key := strings.ToLower(rest)
	if sub, isMail := strings.CutPrefix(key, "mail_"); isMail {
		key = "mail." + sub
	}
	return key
}

// Validate checks the values LoadConfig cannot default.
func (c Config) Validate() error {
	invalid := oops.Code("CONFIG_INVALID")

	if c.Env != "dev" && c.SessionSecret == "" {
		return invalid.With("env", c.Env).Errorf("session_secret is required outside dev")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return invalid.With("port", c.Port).Errorf("port must be between 1 and 65535")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return invalid.With("log_format", c.LogFormat).Errorf("log_format must be 'json' or 'text'")
	}
	switch c.Mail.Driver {
	case "log":
	case "smtp":
		if c.Mail.Host == "" {
			return invalid.Errorf("mail.host is required for the smtp driver")
		}
	default:
		return invalid.With("driver", c.Mail.Driver).Errorf("mail.driver must be 'smtp' or 'log'")
	}
	if c.ConfirmationURL == "" {
		return invalid.Errorf("confirmation_url is required")
	}
	return nil
}
