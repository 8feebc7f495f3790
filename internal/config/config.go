// Package config loads the client's settings from flags, GAIA_* environment
// variables and an optional config.yaml in the state directory, using Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Locales the console understands.
const (
	LocaleEnglish = "en-US"
	LocaleChinese = "zh-Hans"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GAIA"

// Config holds the client configuration.
type Config struct {
	// APIURL is the console API root, e.g. https://console.example.com/console/api.
	APIURL string `mapstructure:"API_URL"`
	// AdminAPIURL is the admin server root serving /gaia/checkin and /user/check*.
	AdminAPIURL string `mapstructure:"ADMIN_API_URL"`
	// WebURL is the console web root, used to open terms and invite pages.
	WebURL string `mapstructure:"WEB_URL"`
	// Locale is sent with sign-in and code requests; en-US or zh-Hans.
	Locale   string `mapstructure:"LOCALE"`
	StateDir string `mapstructure:"STATE_DIR"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// HTTPTimeout bounds each API request.
	HTTPTimeout time.Duration `mapstructure:"HTTP_TIMEOUT"`
	// ResendCooldown is the wait between two verification-code requests.
	ResendCooldown time.Duration `mapstructure:"RESEND_COOLDOWN"`
	// LandingPath is where a sign-in lands without a deferred redirect.
	LandingPath string `mapstructure:"LANDING_PATH"`
	// AllowRegistration mirrors the site's self-registration setting.
	AllowRegistration bool `mapstructure:"ALLOW_REGISTRATION"`
	// AdminToken is the admin server's x-token for check-in and points calls.
	AdminToken string `mapstructure:"TOKEN"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"api-url":   "API_URL",
	"locale":    "LOCALE",
	"log-level": "LOG_LEVEL",
	"state-dir": "STATE_DIR",
}

// RegisterFlags adds the global flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("api-url", "", "console API root (env GAIA_API_URL)")
	fs.String("locale", "", "interface and e-mail language: en-US or zh-Hans (env GAIA_LOCALE)")
	fs.String("log-level", "", "debug, info, warn or error (env GAIA_LOG_LEVEL)")
	fs.String("state-dir", "", "directory holding state.db, gaia.log and config.yaml (env GAIA_STATE_DIR)")
}

// Load builds and validates Config. Precedence, highest first: flags set on
// the command line, environment, config.yaml, defaults. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("API_URL", "http://localhost:5001/console/api")
	v.SetDefault("ADMIN_API_URL", "http://localhost:8888")
	v.SetDefault("WEB_URL", "http://localhost:3000")
	v.SetDefault("LOCALE", LocaleEnglish)
	v.SetDefault("STATE_DIR", defaultStateDir())
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("RESEND_COOLDOWN", "60s")
	v.SetDefault("LANDING_PATH", "/explore/apps")
	v.SetDefault("ALLOW_REGISTRATION", true)
	v.SetDefault("TOKEN", "")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind --%s: %w", name, err)
				}
			}
		}
	}

	v.SetConfigFile(filepath.Join(v.GetString("STATE_DIR"), "config.yaml"))
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config.yaml: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	for _, u := range []struct{ key, value string }{
		{"API_URL", c.APIURL},
		{"ADMIN_API_URL", c.AdminAPIURL},
		{"WEB_URL", c.WebURL},
	} {
		if err := checkURL(u.value); err != nil {
			return fmt.Errorf("config: %s: %w", u.key, err)
		}
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("config: HTTP_TIMEOUT must be positive")
	}
	if c.ResendCooldown <= 0 {
		return errors.New("config: RESEND_COOLDOWN must be positive")
	}
	if c.StateDir == "" {
		return errors.New("config: STATE_DIR must be set")
	}
	if !strings.HasPrefix(c.LandingPath, "/") {
		return errors.New("config: LANDING_PATH must start with /")
	}
	c.Locale = NormalizeLocale(c.Locale)
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an absolute http(s) URL", raw)
	}
	return nil
}

// NormalizeLocale maps any Chinese locale to zh-Hans and everything else to en-US.
func NormalizeLocale(locale string) string {
	l := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
	if l == "zh" || strings.HasPrefix(l, "zh-") {
		return LocaleChinese
	}
	return LocaleEnglish
}

// StatePath returns the path of name inside the state directory.
func (c *Config) StatePath(name string) string {
	return filepath.Join(c.StateDir, name)
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gaia"
	}
	return filepath.Join(home, ".gaia")
}
