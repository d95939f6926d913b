package adapter

import (
	"context"
	"time"

	"github.com/kbukum/solrkit/endpoint"
	"github.com/kbukum/solrkit/request"
)

// DefaultTimeout is the default overall timeout of an exchange.
const DefaultTimeout = 5 * time.Second

// Adapter executes a request against an endpoint.
type Adapter interface {
	Execute(ctx context.Context, req *request.Request, ep *endpoint.Endpoint) (*request.Response, error)
}

// Func adapts a plain function to the Adapter interface.
type Func func(ctx context.Context, req *request.Request, ep *endpoint.Endpoint) (*request.Response, error)

// Execute calls f.
func (f Func) Execute(ctx context.Context, req *request.Request, ep *endpoint.Endpoint) (*request.Response, error) {
	return f(ctx, req, ep)
}

// TimeoutAware is implemented by adapters with a configurable overall timeout.
type TimeoutAware interface {
	Timeout() time.Duration
	SetTimeout(d time.Duration)
}

// ConnectionTimeoutAware is implemented by adapters with a separate connect timeout.
// A zero connection timeout means the overall timeout applies to connecting too.
type ConnectionTimeoutAware interface {
	ConnectionTimeout() time.Duration
	SetConnectionTimeout(d time.Duration)
}

// ProxyAware is implemented by adapters that can route through a proxy.
type ProxyAware interface {
	Proxy() string
	SetProxy(proxy string) error
}

// Closeable is implemented by adapters holding pooled connections.
type Closeable interface {
	Close(ctx context.Context) error
}
