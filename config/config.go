package config

import (
	"fmt"
	"sort"

	"github.com/kbukum/solrkit/adapter"
	"github.com/kbukum/solrkit/endpoint"
	"github.com/kbukum/solrkit/httpadapter"
	"github.com/kbukum/solrkit/observability"
	"github.com/kbukum/solrkit/validation"
)

// Config is the complete solrkit configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Adapter         httpadapter.Config         `yaml:"adapter" mapstructure:"adapter"`
	Resilience      adapter.ResilienceConfig   `yaml:"resilience" mapstructure:"resilience"`
	Endpoints       map[string]endpoint.Config `yaml:"endpoints" mapstructure:"endpoints"`
	DefaultEndpoint string                     `yaml:"default_endpoint" mapstructure:"default_endpoint"`
	Tracing         observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics         MetricsConfig              `yaml:"metrics" mapstructure:"metrics"`
}

// MetricsConfig controls Prometheus metrics. Textfile, when set, receives
// the collected metrics in the text exposition format on exit.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// ApplyDefaults fills zero values of every section. Without endpoints a
// "localhost" endpoint is added; without a default endpoint the first key in
// sorted order is used.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "solrkit"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Adapter.ApplyDefaults()
	c.Resilience.ApplyDefaults()

	if len(c.Endpoints) == 0 {
		c.Endpoints = map[string]endpoint.Config{"localhost": {}}
	}
	for key, ep := range c.Endpoints {
		ep.ApplyDefaults()
		c.Endpoints[key] = ep
	}
	if c.DefaultEndpoint == "" {
		c.DefaultEndpoint = c.EndpointKeys()[0]
	}

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = c.Name
	}
	if c.Tracing.ServiceVersion == "" {
		c.Tracing.ServiceVersion = c.Version
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = c.Environment
	}
	c.Tracing.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Adapter.Validate(); err != nil {
		return fmt.Errorf("config.adapter: %w", err)
	}
	for _, key := range c.EndpointKeys() {
		ep := c.Endpoints[key]
		if err := ep.Validate(); err != nil {
			return fmt.Errorf("config.endpoints.%s: %w", key, err)
		}
	}
	if _, ok := c.Endpoints[c.DefaultEndpoint]; !ok {
		return fmt.Errorf("config.default_endpoint %q is not a configured endpoint", c.DefaultEndpoint)
	}
	if err := validation.Validate(&c.Tracing); err != nil {
		return fmt.Errorf("config.tracing: %w", err)
	}
	return nil
}

// EndpointKeys returns the configured endpoint keys, sorted.
func (c *Config) EndpointKeys() []string {
	keys := make([]string, 0, len(c.Endpoints))
	for k := range c.Endpoints {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildEndpoints creates the configured endpoints with the default endpoint first.
func (c *Config) BuildEndpoints() ([]*endpoint.Endpoint, error) {
	keys := c.EndpointKeys()
	sort.SliceStable(keys, func(i, j int) bool { return keys[i] == c.DefaultEndpoint && keys[j] != c.DefaultEndpoint })

	eps := make([]*endpoint.Endpoint, 0, len(keys))
	for _, key := range keys {
		ep, err := endpoint.New(key, c.Endpoints[key])
		if err != nil {
			return nil, fmt.Errorf("config.endpoints.%s: %w", key, err)
		}
		eps = append(eps, ep)
	}
	return eps, nil
}
