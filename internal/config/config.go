// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv = "OSM2CSV"

	// DefaultRateLimit matches the public Nominatim usage policy
	DefaultRateLimit = 1.0

	PolicyLenient = "lenient"
	PolicyStrict  = "strict"
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`
	Progress bool       `fig:"progress"`
	// Allowed values: lenient, strict
	AddressPolicy string `fig:"address_policy" default:"lenient"`

	Geocoder struct {
		Endpoint string        `fig:"endpoint" default:"https://nominatim.openstreetmap.org"`
		Email    string        `fig:"email"`
		Timeout  time.Duration `fig:"timeout" default:"10s"`
		// Requests per second, 0 disables pacing. Public Nominatim allows at most 1.
		// A pointer so an explicit 0 is not replaced by the default.
		RateLimit *float64 `fig:"rate_limit" default:"1"`
	} `fig:"geocoder"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	if c.AddressPolicy != PolicyLenient && c.AddressPolicy != PolicyStrict {
		return fmt.Errorf("invalid address policy: %s", c.AddressPolicy)
	}
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	endpoint, err := url.Parse(c.Geocoder.Endpoint)
	if err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		return fmt.Errorf("invalid geocoder endpoint: %q", c.Geocoder.Endpoint)
	}
	if c.Geocoder.Timeout <= 0 {
		return fmt.Errorf("invalid geocoder timeout: %s", c.Geocoder.Timeout)
	}
	if rate := c.RequestRate(); rate < 0 {
		return fmt.Errorf("invalid geocoder rate limit: %f", rate)
	}

	return nil
}

// RequestRate returns the geocoder requests per second, or DefaultRateLimit
// when no rate limit was configured.
func (c *Config) RequestRate() float64 {
	if c.Geocoder.RateLimit == nil {
		return DefaultRateLimit
	}
	return *c.Geocoder.RateLimit
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
