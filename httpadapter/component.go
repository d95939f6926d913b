package httpadapter

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kbukum/solrkit/component"
)

// Component wraps an Adapter with lifecycle management. The adapter is
// created in Start and its idle connections are released in Stop.
type Component struct {
	adapter *Adapter
	config  Config
	opts    []Option
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates an adapter component.
func NewComponent(cfg Config, opts ...Option) *Component {
	cfg.ApplyDefaults()
	return &Component{config: cfg, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string { return c.config.Name }

// Start creates the adapter.
func (c *Component) Start(_ context.Context) error {
	a, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}
	c.adapter = a
	return nil
}

// Stop closes the adapter.
func (c *Component) Stop(ctx context.Context) error {
	if c.adapter == nil {
		return nil
	}
	return c.adapter.Close(ctx)
}

// Health reports healthy once the adapter has been started.
func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.adapter == nil {
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	}
	return h
}

// Describe summarizes the adapter configuration.
func (c *Component) Describe() component.Description {
	proxy := redactProxy(c.config.Proxy)
	return component.Description{
		Name:    c.Name(),
		Type:    "adapter",
		Details: fmt.Sprintf("timeout=%s connect=%s proxy=%s http2=%t", c.config.Timeout, c.config.dialTimeout(), proxy, c.config.HTTP2),
	}
}

// redactProxy hides the password of a proxy URL. An empty proxy means the
// environment is consulted.
func redactProxy(proxy string) string {
	if proxy == "" {
		return "env"
	}
	u, err := url.Parse(proxy)
	if err != nil {
		return "invalid"
	}
	return u.Redacted()
}

// Adapter returns the adapter. Nil before Start.
func (c *Component) Adapter() *Adapter { return c.adapter }
