package httpadapter

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/kbukum/solrkit/endpoint"
)

// doerFunc adapts a function to the Doer interface.
type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func newAdapter(t *testing.T, cfg Config, opts ...Option) *Adapter {
	t.Helper()
	a, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

// endpointFor returns an endpoint bound to the "books" core of srvURL.
func endpointFor(t *testing.T, srvURL string, mutate ...func(*endpoint.Config)) *endpoint.Endpoint {
	t.Helper()
	u, err := url.Parse(srvURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	cfg := endpoint.Config{Host: host, Port: port, Core: "books"}
	for _, m := range mutate {
		m(&cfg)
	}
	ep, err := endpoint.New("test", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ep
}
