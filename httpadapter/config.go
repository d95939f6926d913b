package httpadapter

import (
	"fmt"
	"time"

	"github.com/kbukum/solrkit/adapter"
	"github.com/kbukum/solrkit/validation"
)

const (
	defaultName         = "solr-http"
	defaultMaxRedirects = 10

	// NoRedirects as MaxRedirects makes any redirect a transport failure.
	NoRedirects = -1
)

// Config configures the HTTP adapter.
type Config struct {
	// Name is the component name. Defaults to "solr-http".
	Name string `yaml:"name" mapstructure:"name"`

	// Timeout bounds a whole exchange. Defaults to 5s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// ConnectionTimeout bounds TCP connect. Zero falls back to Timeout.
	ConnectionTimeout time.Duration `yaml:"connection_timeout" mapstructure:"connection_timeout"`

	// Proxy is a proxy URL (http, https, socks5). Empty uses the environment.
	Proxy string `yaml:"proxy" mapstructure:"proxy" validate:"omitempty,proxy_url"`

	// TLS configures certificate verification and client certificates.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// HTTP2 configures the transport for HTTP/2 through golang.org/x/net/http2.
	HTTP2 bool `yaml:"http2" mapstructure:"http2"`

	// DisableRedirects returns 3xx responses instead of following them.
	DisableRedirects bool `yaml:"disable_redirects" mapstructure:"disable_redirects"`

	// MaxRedirects is the number of redirects followed. Zero means 10;
	// NoRedirects fails the request with TooManyRedirects on the first 3xx.
	MaxRedirects int `yaml:"max_redirects" mapstructure:"max_redirects" validate:"gte=-1"`

	// UserAgent overrides the default "solrkit/<version>" User-Agent.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Headers are sent with every request. Request header lines override them.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.Timeout <= 0 {
		c.Timeout = adapter.DefaultTimeout
	}
	if c.MaxRedirects == 0 {
		c.MaxRedirects = defaultMaxRedirects
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpadapter: timeout must be positive")
	}
	if c.ConnectionTimeout < 0 {
		return fmt.Errorf("httpadapter: connection timeout must not be negative")
	}
	if err := validation.Validate(c); err != nil {
		return err
	}
	return c.TLS.Validate()
}

// dialTimeout is the effective connect timeout.
func (c *Config) dialTimeout() time.Duration {
	if c.ConnectionTimeout > 0 {
		return c.ConnectionTimeout
	}
	return c.Timeout
}
