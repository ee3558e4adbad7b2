package main

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/traveltales/journal/internal/common"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogFormat   string `mapstructure:"LOG_FORMAT"`

	APIBaseURL            string        `mapstructure:"API_BASE_URL"`
	APITimeout            time.Duration `mapstructure:"API_TIMEOUT"`
	RetryMax              int           `mapstructure:"RETRY_MAX"`
	RetryInitialDelay     time.Duration `mapstructure:"RETRY_INITIAL_DELAY"`
	RetryMultiplier       float64       `mapstructure:"RETRY_MULTIPLIER"`
	RetryValidationErrors bool          `mapstructure:"RETRY_VALIDATION_ERRORS"`
	FanoutLimit           int           `mapstructure:"FANOUT_LIMIT"`

	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`

	LimiterEnabled bool    `mapstructure:"LIMITER_ENABLED"`
	LimiterRPS     float64 `mapstructure:"LIMITER_RPS"`
	LimiterBurst   int     `mapstructure:"LIMITER_BURST"`

	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`
}

var configDefaults = map[string]any{
	"PORT":                    ":4000",
	"ENVIRONMENT":             "development",
	"VERSION":                 "",
	"LOG_LEVEL":               "info",
	"LOG_FORMAT":              "text",
	"API_BASE_URL":            "",
	"API_TIMEOUT":             "10s",
	"RETRY_MAX":               3,
	"RETRY_INITIAL_DELAY":     "1s",
	"RETRY_MULTIPLIER":        1.5,
	"RETRY_VALIDATION_ERRORS": true,
	"FANOUT_LIMIT":            0,
	"SESSION_TTL":             "24h",
	"LIMITER_ENABLED":         true,
	"LIMITER_RPS":             4,
	"LIMITER_BURST":           8,
	"TLS_CERT_FILE":           "",
	"TLS_KEY_FILE":            "",
}

// loadConfig reads the env file at path, when it exists, and lets the
// process environment override it.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	var err error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			err = multierr.Append(err, fmt.Errorf(format, args...))
		}
	}

	check(c.Port != "", "PORT must be provided")
	check(c.APIBaseURL != "", "API_BASE_URL must be provided")
	check(c.APITimeout > 0, "API_TIMEOUT must be positive")
	check(slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel), "LOG_LEVEL %q is not one of debug, info, warn or error", c.LogLevel)
	check(c.LogFormat == "text" || c.LogFormat == "json", "LOG_FORMAT %q is not one of text or json", c.LogFormat)
	check(c.RetryMax >= 0, "RETRY_MAX must not be negative")
	check(c.RetryInitialDelay >= 0, "RETRY_INITIAL_DELAY must not be negative")
	check(c.RetryMultiplier >= 1, "RETRY_MULTIPLIER must be at least 1")
	check(c.FanoutLimit >= 0, "FANOUT_LIMIT must not be negative")
	check(c.SessionTTL > 0, "SESSION_TTL must be positive")
	if c.LimiterEnabled {
		check(c.LimiterRPS > 0, "LIMITER_RPS must be positive")
		check(c.LimiterBurst > 0, "LIMITER_BURST must be positive")
	}
	if c.Environment == "production" {
		check(c.TLSCertFile != "" && c.TLSKeyFile != "", "TLS_CERT_FILE and TLS_KEY_FILE must be provided in production")
	}

	return err
}

func (c *Config) retryPolicy() common.RetryPolicy {
	p := common.RetryPolicy{
		MaxRetries:   c.RetryMax,
		InitialDelay: c.RetryInitialDelay,
		Multiplier:   c.RetryMultiplier,
	}
	if !c.RetryValidationErrors {
		p.RetryIf = common.IsRetryable
	}
	return p
}
