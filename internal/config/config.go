// Package config loads process configuration: NetSuite credentials from the
// environment (optionally a config file), and an optional tool policy file.
// Values are read once at startup and handed to the rest of the process as
// immutable structs.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/suitebridge/netsuite-mcp/internal/netsuite"
	"github.com/suitebridge/netsuite-mcp/internal/oauth"
)

// DefaultAccount is used when NETSUITE_ACCOUNT_ID is unset. Credentials have
// no such fallback: their absence is deliberately not validated here and
// surfaces as a 401 on first use.
const DefaultAccount = "TSTDRV1234567"

type Config struct {
	AccountID      string        `mapstructure:"account_id"`
	ConsumerKey    string        `mapstructure:"consumer_key"`
	ConsumerSecret string        `mapstructure:"consumer_secret"`
	TokenID        string        `mapstructure:"token_id"`
	TokenSecret    string        `mapstructure:"token_secret"`
	APIHost        string        `mapstructure:"api_host"`
	Timeout        time.Duration `mapstructure:"timeout"`
	LogLevel       string        `mapstructure:"log_level"`
}

// Load reads configuration from the environment (NETSUITE_* variables) and,
// when path is non-empty, a yaml/json config file. Environment values win
// over file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NETSUITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("account_id", DefaultAccount)
	v.SetDefault("consumer_key", "")
	v.SetDefault("consumer_secret", "")
	v.SetDefault("token_id", "")
	v.SetDefault("token_secret", "")
	v.SetDefault("api_host", netsuite.DefaultAPIHost)
	v.SetDefault("timeout", netsuite.DefaultTimeout)
	v.SetDefault("log_level", "info")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		AccountID:      v.GetString("account_id"),
		ConsumerKey:    v.GetString("consumer_key"),
		ConsumerSecret: v.GetString("consumer_secret"),
		TokenID:        v.GetString("token_id"),
		TokenSecret:    v.GetString("token_secret"),
		APIHost:        v.GetString("api_host"),
		Timeout:        v.GetDuration("timeout"),
		LogLevel:       v.GetString("log_level"),
	}
	if cfg.AccountID == "" {
		cfg.AccountID = DefaultAccount
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Timeout < 0 {
		return errors.New("timeout must be >= 0")
	}
	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "":
		return nil
	}
	return fmt.Errorf("unknown log_level %q", c.LogLevel)
}

// Credentials returns the immutable credential set injected into the signer
// and dispatcher.
func (c *Config) Credentials() oauth.Credentials {
	return oauth.Credentials{
		Account:        c.AccountID,
		ConsumerKey:    c.ConsumerKey,
		ConsumerSecret: c.ConsumerSecret,
		TokenID:        c.TokenID,
		TokenSecret:    c.TokenSecret,
	}
}
