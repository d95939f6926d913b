// Package client routes requests to named Solr endpoints through an adapter.
package client

import (
	"context"
	"sort"
	"sync"

	"github.com/kbukum/solrkit/adapter"
	"github.com/kbukum/solrkit/endpoint"
	"github.com/kbukum/solrkit/errors"
	"github.com/kbukum/solrkit/logger"
	"github.com/kbukum/solrkit/request"
)

// DefaultEndpointKey is the key of the endpoint created when none is added.
const DefaultEndpointKey = "localhost"

// Client holds a set of endpoints and the adapter used to reach them.
type Client struct {
	mu         sync.RWMutex
	adapter    adapter.Adapter
	endpoints  map[string]*endpoint.Endpoint
	defaultKey string
	log        *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l.WithComponent("client")
		}
	}
}

// WithEndpoints registers endpoints; the first one becomes the default.
func WithEndpoints(eps ...*endpoint.Endpoint) Option {
	return func(c *Client) {
		for _, ep := range eps {
			_ = c.addLocked(ep)
		}
	}
}

// New creates a client executing requests through a.
func New(a adapter.Adapter, opts ...Option) *Client {
	c := &Client{
		adapter:   a,
		endpoints: make(map[string]*endpoint.Endpoint),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Adapter returns the adapter.
func (c *Client) Adapter() adapter.Adapter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.adapter
}

// SetAdapter replaces the adapter.
func (c *Client) SetAdapter(a adapter.Adapter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adapter = a
}

// AddEndpoint registers ep under its key. The first endpoint added becomes the default.
func (c *Client) AddEndpoint(ep *endpoint.Endpoint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addLocked(ep)
}

func (c *Client) addLocked(ep *endpoint.Endpoint) error {
	if ep == nil || ep.Key() == "" {
		return errors.InvalidArgument("An endpoint must have a key value")
	}
	if _, ok := c.endpoints[ep.Key()]; ok {
		return errors.InvalidArgumentf("An endpoint with this key already exists, it cannot be overwritten or added twice: %s", ep.Key())
	}
	c.endpoints[ep.Key()] = ep
	if c.defaultKey == "" {
		c.defaultKey = ep.Key()
	}
	c.log.Debug("endpoint added", logger.Fields(logger.FieldEndpoint, ep.String()))
	return nil
}

// AddEndpoints registers several endpoints, stopping at the first error.
func (c *Client) AddEndpoints(eps ...*endpoint.Endpoint) error {
	for _, ep := range eps {
		if err := c.AddEndpoint(ep); err != nil {
			return err
		}
	}
	return nil
}

// Endpoint returns the endpoint registered under key, or the default endpoint
// when key is empty. Without any endpoint a local default is created.
func (c *Client) Endpoint(key string) (*endpoint.Endpoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.endpoints) == 0 && (key == "" || key == DefaultEndpointKey) {
		_ = c.addLocked(endpoint.Default(DefaultEndpointKey))
	}
	if key == "" {
		key = c.defaultKey
	}
	ep, ok := c.endpoints[key]
	if !ok {
		return nil, errors.InvalidArgumentf("Invalid endpoint key: %s", key)
	}
	return ep, nil
}

// Endpoints returns the registered endpoint keys, sorted.
func (c *Client) Endpoints() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.endpoints))
	for k := range c.endpoints {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetDefaultEndpoint makes key the default endpoint.
func (c *Client) SetDefaultEndpoint(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.endpoints[key]; !ok {
		return errors.InvalidArgumentf("Unknown endpoint %s cannot be set as default", key)
	}
	c.defaultKey = key
	return nil
}

// RemoveEndpoint unregisters key. Removing the default clears the default.
func (c *Client) RemoveEndpoint(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.endpoints, key)
	if c.defaultKey == key {
		c.defaultKey = ""
	}
}

// Execute sends req to the endpoint registered under key (the default when empty).
func (c *Client) Execute(ctx context.Context, req *request.Request, key string) (*request.Response, error) {
	ep, err := c.Endpoint(key)
	if err != nil {
		return nil, err
	}
	return c.Adapter().Execute(ctx, req, ep)
}

// Ping calls the admin/ping handler of the endpoint's core or collection and
// fails unless the status is below 400.
func (c *Client) Ping(ctx context.Context, key string) (*request.Response, error) {
	req := request.New(request.MethodGet, "admin/ping").AddParam("wt", "json")
	resp, err := c.Execute(ctx, req, key)
	if err != nil {
		return nil, err
	}
	if err := resp.Check(); err != nil {
		return resp, err
	}
	return resp, nil
}
