package httpadapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/http2"

	"github.com/kbukum/solrkit/adapter"
	"github.com/kbukum/solrkit/endpoint"
	"github.com/kbukum/solrkit/errors"
	"github.com/kbukum/solrkit/logger"
	"github.com/kbukum/solrkit/observability"
	"github.com/kbukum/solrkit/request"
	"github.com/kbukum/solrkit/validation"
	"github.com/kbukum/solrkit/version"
)

// formContentType is sent for raw POST and PUT bodies without a Content-Type header.
const formContentType = "application/x-www-form-urlencoded"

// Adapter executes requests with net/http.
type Adapter struct {
	mu        sync.RWMutex
	config    Config
	transport *http.Transport
	client    Doer

	log     *logger.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

var (
	_ adapter.Adapter                = (*Adapter)(nil)
	_ adapter.TimeoutAware           = (*Adapter)(nil)
	_ adapter.ConnectionTimeoutAware = (*Adapter)(nil)
	_ adapter.ProxyAware             = (*Adapter)(nil)
	_ adapter.Closeable              = (*Adapter)(nil)
)

// New creates an HTTP adapter with the given configuration.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Adapter{
		config: cfg,
		log:    logger.Nop(),
		tracer: observability.Tracer(),
	}
	if err := a.rebuild(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Config returns a copy of the current configuration.
func (a *Adapter) Config() Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}

// Execute sends req to ep and returns the response. HTTP error statuses are
// not errors; use Response.Check.
func (a *Adapter) Execute(ctx context.Context, req *request.Request, ep *endpoint.Endpoint) (*request.Response, error) {
	start := time.Now()
	ctx = logger.ContextWithRequestID(ctx, uuid.NewString())
	method := req.GetMethod()

	ctx, span := a.tracer.Start(ctx, observability.SpanExecute,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String(observability.AttrEndpoint, ep.Key()),
			attribute.String(observability.AttrHandler, req.Handler),
			attribute.String(observability.AttrRequestID, logger.RequestIDFromContext(ctx)),
		))

	resp, uri, err := a.execute(ctx, req, ep)
	a.observe(ctx, span, method, ep, uri, resp, err, time.Since(start))
	observability.EndSpan(span, err)
	return resp, err
}

// execute returns the target URL alongside the result; it is nil when the
// request could not be built.
func (a *Adapter) execute(ctx context.Context, req *request.Request, ep *endpoint.Endpoint) (*request.Response, *url.URL, error) {
	a.mu.RLock()
	client, timeout := a.client, a.config.Timeout
	a.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := a.NewRequest(ctx, req, ep)
	if err != nil {
		return nil, nil, err
	}
	resp, err := readResponse(client.Do(httpReq))
	return resp, httpReq.URL, err
}

// NewRequest builds the *http.Request for req on ep: URI, method, headers,
// authentication and body. Only GET, POST, HEAD, DELETE and PUT are accepted.
func (a *Adapter) NewRequest(ctx context.Context, req *request.Request, ep *endpoint.Endpoint) (*http.Request, error) {
	method := req.GetMethod()
	var (
		body        []byte
		contentType string
	)
	switch method {
	case request.MethodGet, request.MethodHead, request.MethodDelete:
	case request.MethodPost, request.MethodPut:
		if req.FileUpload != nil {
			var err error
			if body, contentType, err = adapter.BuildUploadBody(req); err != nil {
				return nil, err
			}
		} else {
			body = req.RawData
		}
	default:
		return nil, errors.InvalidArgumentf("unsupported method: %s", method)
	}

	uri, err := adapter.BuildURI(req, ep)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return nil, errors.RequestFailed(errors.TransportURLMalformed, err.Error(), err)
	}

	httpReq.Header = a.createHeaders(req)
	switch {
	case contentType != "":
		httpReq.Header.Set("Content-Type", contentType)
	case body != nil && httpReq.Header.Get("Content-Type") == "":
		httpReq.Header.Set("Content-Type", formContentType)
	}
	applyAuth(httpReq, req, ep)
	return httpReq, nil
}

// createHeaders merges the configured default headers with the request's
// header lines; request lines win.
func (a *Adapter) createHeaders(req *request.Request) http.Header {
	a.mu.RLock()
	defaults, userAgent := a.config.Headers, a.config.UserAgent
	a.mu.RUnlock()

	h := make(http.Header, len(defaults)+len(req.Headers)+1)
	for k, v := range defaults {
		h.Set(k, v)
	}
	for k, vs := range req.HeaderMap() {
		h[k] = vs
	}
	if h.Get("User-Agent") == "" {
		if userAgent == "" {
			userAgent = version.UserAgent()
		}
		h.Set("User-Agent", userAgent)
	}
	return h
}

// applyAuth sets credentials. Endpoint credentials are used unless the
// endpoint has no username, in which case the request's are. A complete
// username/password pair is sent as Basic auth and replaces any Authorization
// header; otherwise the endpoint token is sent unless an Authorization header
// is already present.
func applyAuth(httpReq *http.Request, req *request.Request, ep *endpoint.Endpoint) {
	auth := ep.GetAuthentication()
	if auth.Username == "" {
		auth = req.GetAuthentication()
	}

	if auth.IsSet() {
		httpReq.Header.Del("Authorization")
		httpReq.SetBasicAuth(auth.Username, auth.Password)
		return
	}
	if httpReq.Header.Get("Authorization") != "" {
		return
	}
	if token := ep.GetAuthorizationToken(); token.IsSet() {
		httpReq.Header.Set("Authorization", token.Header())
	}
}

// readResponse turns the result of Doer.Do into a request.Response. Transport
// errors become HTTP_REQUEST_FAILED errors and any partial response is
// discarded. The body is always closed.
func readResponse(resp *http.Response, err error) (*request.Response, error) {
	if err != nil {
		// A response returned alongside an error (failed redirect policy) is already closed.
		return nil, errors.RequestFailed(errors.ClassifyTransport(err), err.Error(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		code := errors.ClassifyTransport(err)
		if code == errors.TransportUnknown {
			code = errors.TransportRecvError
		}
		return nil, errors.RequestFailed(code, fmt.Sprintf("read response body: %v", err), err)
	}

	return request.NewResponse(body, headerLines(resp))
}

// headerLines returns the status line followed by one "Name: value" line per
// header value, ordered by name.
func headerLines(resp *http.Response) []string {
	lines := make([]string, 0, len(resp.Header)+1)
	lines = append(lines, statusLine(resp))

	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range resp.Header[name] {
			lines = append(lines, name+": "+v)
		}
	}
	return lines
}

func statusLine(resp *http.Response) string {
	proto := resp.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return proto + " " + status
}

func (a *Adapter) observe(ctx context.Context, span trace.Span, method string, ep *endpoint.Endpoint,
	uri *url.URL, resp *request.Response, err error, d time.Duration) {
	log := a.log.WithContext(ctx)
	fields := logger.Fields(
		logger.FieldMethod, method,
		logger.FieldEndpoint, ep.Key(),
		logger.FieldDuration, d.Milliseconds(),
	)
	if uri != nil {
		fields[logger.FieldURI] = uri.Redacted()
		span.SetAttributes(attribute.String("url.full", uri.Redacted()))
	}

	switch {
	case err == nil:
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode()))
		fields[logger.FieldStatus] = resp.StatusCode()
		outcome := observability.OutcomeSuccess
		if resp.StatusCode() >= 400 {
			outcome = observability.OutcomeHTTPError
		}
		a.metrics.ObserveRequest(method, outcome, d)
		log.Debug("request executed", fields)
	case errors.IsRequestFailed(err):
		e, _ := errors.As(err)
		span.SetAttributes(attribute.Int(observability.AttrTransportCode, int(e.TransportCode)))
		fields[logger.FieldErrno] = int(e.TransportCode)
		fields[logger.FieldError] = e.Message
		a.metrics.ObserveRequest(method, observability.OutcomeTransportError, d)
		a.metrics.ObserveTransportError(e.TransportCode.String())
		log.Warn("request failed", fields)
	default:
		fields[logger.FieldError] = err.Error()
		a.metrics.ObserveRequest(method, observability.OutcomeInvalid, d)
		log.Debug("request rejected", fields)
	}
}

// Timeout returns the overall timeout of an exchange.
func (a *Adapter) Timeout() time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config.Timeout
}

// SetTimeout sets the overall timeout. Non-positive values restore the default.
func (a *Adapter) SetTimeout(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d <= 0 {
		d = adapter.DefaultTimeout
	}
	a.config.Timeout = d
	if a.transport != nil && a.config.ConnectionTimeout == 0 {
		_ = a.rebuildLocked()
	}
}

// ConnectionTimeout returns the connect timeout; zero means Timeout applies.
func (a *Adapter) ConnectionTimeout() time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config.ConnectionTimeout
}

// SetConnectionTimeout sets the connect timeout and rebuilds the transport.
func (a *Adapter) SetConnectionTimeout(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d < 0 {
		d = 0
	}
	a.config.ConnectionTimeout = d
	if a.transport != nil {
		_ = a.rebuildLocked()
	}
}

// Proxy returns the configured proxy URL.
func (a *Adapter) Proxy() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config.Proxy
}

// SetProxy routes requests through proxy. An empty string restores the
// environment proxy settings.
func (a *Adapter) SetProxy(proxy string) error {
	if proxy != "" && !validation.IsProxyURL(proxy) {
		return errors.InvalidArgumentf("invalid proxy URL: %s", proxy)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.config.Proxy = proxy
	if a.transport == nil {
		return nil
	}
	return a.rebuildLocked()
}

// Close releases idle connections.
func (a *Adapter) Close(_ context.Context) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.transport != nil {
		a.transport.CloseIdleConnections()
	} else if c, ok := a.client.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
	return nil
}

func (a *Adapter) rebuild() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rebuildLocked()
}

// rebuildLocked replaces the transport and client with ones built from the
// current config. The caller must hold a.mu.
func (a *Adapter) rebuildLocked() error {
	transport, err := newTransport(&a.config)
	if err != nil {
		return err
	}
	if a.transport != nil {
		a.transport.CloseIdleConnections()
	}
	a.transport = transport
	a.client = &http.Client{
		Transport:     transport,
		CheckRedirect: redirectPolicy(a.config.DisableRedirects, a.config.MaxRedirects),
	}
	return nil
}

func newTransport(cfg *Config) (*http.Transport, error) {
	proxy := http.ProxyFromEnvironment
	if cfg.Proxy != "" {
		u, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, errors.InvalidArgumentf("invalid proxy URL: %s", cfg.Proxy)
		}
		proxy = http.ProxyURL(u)
	}

	dialer := &net.Dialer{
		Timeout:   cfg.dialTimeout(),
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 proxy,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   cfg.dialTimeout(),
		ExpectContinueTimeout: time.Second,
	}

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	transport.TLSClientConfig = tlsCfg

	if cfg.HTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			return nil, fmt.Errorf("httpadapter: configure http2: %w", err)
		}
	}
	return transport, nil
}

func redirectPolicy(disabled bool, limit int) func(*http.Request, []*http.Request) error {
	if limit < 0 {
		limit = 0
	}
	return func(_ *http.Request, via []*http.Request) error {
		if disabled {
			return http.ErrUseLastResponse
		}
		if len(via) > limit {
			return errors.ErrTooManyRedirects
		}
		return nil
	}
}
