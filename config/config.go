package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultTimeout is the per-request deadline used when none is configured
const DefaultTimeout = 20000 * time.Millisecond

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config groups the connection settings shared by every command sent to a site.
// Executors treat a Config as read-only.
type Config struct {
	SiteURL  string        `yaml:"site_url" json:"site_url" validate:"required,url"`
	Username string        `yaml:"username" json:"username"`
	Password string        `yaml:"password" json:"password"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
}

type Option func(*Config)

func New(opts ...Option) *Config {
	cfg := &Config{
		Timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

func WithSiteURL(siteURL string) Option {
	return func(c *Config) {
		c.SiteURL = siteURL
	}
}

func WithCredentials(username, password string) Option {
	return func(c *Config) {
		c.Username = username
		c.Password = password
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// Clone returns an independent copy of the config
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// HasCredentials reports whether both username and password are set
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid site config: %w", err)
	}
	return nil
}
