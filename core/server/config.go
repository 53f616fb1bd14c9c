package server

import (
	"fmt"
	"strconv"
	"time"
)

// Config holds configuration for the HTTP control surface.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// ReadTimeoutSeconds bounds reading a request.
	ReadTimeoutSeconds int `mapstructure:"read_timeout_seconds" default:"15"`
	// ViewportExtent is the initial viewport extent of the served view.
	ViewportExtent float64 `mapstructure:"viewport_extent" default:"600"`
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

// ReadTimeout returns ReadTimeoutSeconds as a duration.
func (c Config) ReadTimeout() time.Duration {
	if c.ReadTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// Validate checks the port and viewport.
func (c Config) Validate() error {
	p, err := strconv.Atoi(c.Port)
	if err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid server port %q", c.Port)
	}
	if c.ViewportExtent <= 0 {
		return fmt.Errorf("viewport extent must be positive, got %g", c.ViewportExtent)
	}
	return nil
}
