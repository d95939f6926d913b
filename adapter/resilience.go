package adapter

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kbukum/solrkit/endpoint"
	"github.com/kbukum/solrkit/errors"
	"github.com/kbukum/solrkit/logger"
	"github.com/kbukum/solrkit/request"
)

// RetryConfig configures retries of transport failures.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
	// Multiplier grows the delay after every retry.
	Multiplier float64 `yaml:"multiplier" mapstructure:"multiplier"`
	// Jitter randomizes each delay by up to this fraction (0.0 to 1.0).
	Jitter float64 `yaml:"jitter" mapstructure:"jitter"`
	// RetryIf decides whether an error is retried. Defaults to errors.IsRetryable.
	RetryIf func(error) bool `yaml:"-" mapstructure:"-"`
}

// CircuitBreakerConfig configures the per-endpoint circuit breaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive transport failures that opens the circuit.
	MaxFailures int `yaml:"max_failures" mapstructure:"max_failures"`
	// OpenTimeout is how long the circuit stays open before a trial request is let through.
	OpenTimeout time.Duration `yaml:"open_timeout" mapstructure:"open_timeout"`
}

// RateLimitConfig configures a token bucket shared by all endpoints.
type RateLimitConfig struct {
	// Rate is the number of requests allowed per second.
	Rate float64 `yaml:"rate" mapstructure:"rate"`
	// Burst is the maximum burst size.
	Burst int `yaml:"burst" mapstructure:"burst"`
}

// ResilienceConfig groups the optional resilience layers. Nil fields are skipped.
type ResilienceConfig struct {
	Retry          *RetryConfig          `yaml:"retry" mapstructure:"retry"`
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	RateLimit      *RateLimitConfig      `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// IsEmpty reports whether no resilience layer is configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.Retry == nil && c.CircuitBreaker == nil && c.RateLimit == nil
}

// ApplyDefaults fills zero values of the configured layers.
func (c *ResilienceConfig) ApplyDefaults() {
	if r := c.Retry; r != nil {
		if r.MaxAttempts <= 0 {
			r.MaxAttempts = 3
		}
		if r.InitialBackoff <= 0 {
			r.InitialBackoff = 100 * time.Millisecond
		}
		if r.MaxBackoff <= 0 {
			r.MaxBackoff = 5 * time.Second
		}
		if r.Multiplier <= 0 {
			r.Multiplier = 2.0
		}
		if r.RetryIf == nil {
			r.RetryIf = errors.IsRetryable
		}
	}
	if cb := c.CircuitBreaker; cb != nil {
		if cb.MaxFailures <= 0 {
			cb.MaxFailures = 5
		}
		if cb.OpenTimeout <= 0 {
			cb.OpenTimeout = 30 * time.Second
		}
	}
	if rl := c.RateLimit; rl != nil {
		if rl.Rate <= 0 {
			rl.Rate = 10
		}
		if rl.Burst <= 0 {
			rl.Burst = int(math.Max(1, rl.Rate))
		}
	}
}

// Resilient decorates an Adapter with rate limiting, a per-endpoint circuit
// breaker and retries. Execution chain: RateLimit -> CircuitBreaker -> Retry -> Execute.
type Resilient struct {
	inner   Adapter
	cfg     ResilienceConfig
	limiter *rate.Limiter
	log     *logger.Logger

	mu       sync.Mutex
	breakers map[string]*breaker
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// WithResilience wraps a with the configured layers. An empty config returns a unchanged.
func WithResilience(a Adapter, cfg ResilienceConfig, log *logger.Logger) Adapter {
	if cfg.IsEmpty() {
		return a
	}
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	r := &Resilient{
		inner:    a,
		cfg:      cfg,
		log:      log.WithComponent("resilience"),
		breakers: make(map[string]*breaker),
		now:      time.Now,
		sleep:    sleepContext,
	}
	if cfg.RateLimit != nil {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.Rate), cfg.RateLimit.Burst)
	}
	return r
}

// Unwrap returns the decorated adapter.
func (r *Resilient) Unwrap() Adapter { return r.inner }

// Execute runs req through the configured layers.
func (r *Resilient) Execute(ctx context.Context, req *request.Request, ep *endpoint.Endpoint) (*request.Response, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, errors.RateLimited(err)
		}
	}

	var b *breaker
	if r.cfg.CircuitBreaker != nil {
		b = r.breakerFor(ep)
		if !b.allow(r.now()) {
			return nil, errors.CircuitOpen(breakerKey(ep))
		}
	}

	resp, err := r.executeWithRetry(ctx, req, ep)

	if b != nil {
		if neutralOutcome(ctx, err) {
			b.release()
		} else if from, to, changed := b.record(!errors.IsRequestFailed(err), r.now()); changed {
			r.log.Warn("circuit state changed", logger.Fields(
				logger.FieldEndpoint, breakerKey(ep), "from", from.String(), "to", to.String()))
		}
	}
	return resp, err
}

// neutralOutcome reports failures caused by the caller rather than the
// endpoint: cancellations and requests that never left the process.
func neutralOutcome(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx.Err() != nil {
		return true
	}
	e, ok := errors.As(err)
	if !ok || e.Code != errors.ErrCodeRequestFailed {
		return false
	}
	switch e.TransportCode {
	case errors.TransportAborted, errors.TransportURLMalformed, errors.TransportUnsupportedProtocol:
		return true
	}
	return false
}

// CircuitState returns the breaker state of an endpoint ("closed" when unknown).
func (r *Resilient) CircuitState(ep *endpoint.Endpoint) string {
	r.mu.Lock()
	b, ok := r.breakers[breakerKey(ep)]
	r.mu.Unlock()
	if !ok {
		return circuitClosed.String()
	}
	return b.current(r.now()).String()
}

func (r *Resilient) executeWithRetry(ctx context.Context, req *request.Request, ep *endpoint.Endpoint) (*request.Response, error) {
	rc := r.cfg.Retry
	// A reader-backed upload is consumed by the first attempt and cannot be replayed.
	if rc == nil || (req.FileUpload != nil && req.FileUpload.Reader != nil) {
		return r.inner.Execute(ctx, req, ep)
	}

	var lastErr error
	for attempt := 1; attempt <= rc.MaxAttempts; attempt++ {
		resp, err := r.inner.Execute(ctx, req, ep)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt == rc.MaxAttempts || !rc.RetryIf(err) {
			break
		}

		delay := backoff(attempt, rc)
		r.log.WithContext(ctx).Debug("retrying request", logger.Fields(
			logger.FieldEndpoint, breakerKey(ep), "attempt", attempt, "backoff_ms", delay.Milliseconds(),
			logger.FieldError, err.Error()))
		if err := r.sleep(ctx, delay); err != nil {
			return nil, errors.RequestFailed(errors.ClassifyTransport(err), err.Error(), err)
		}
	}
	return nil, lastErr
}

func (r *Resilient) breakerFor(ep *endpoint.Endpoint) *breaker {
	key := breakerKey(ep)
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.breakers[key]
	if !ok {
		b = &breaker{maxFailures: r.cfg.CircuitBreaker.MaxFailures, openTimeout: r.cfg.CircuitBreaker.OpenTimeout}
		r.breakers[key] = b
	}
	return b
}

func breakerKey(ep *endpoint.Endpoint) string {
	if ep.Key() != "" {
		return ep.Key()
	}
	return ep.ServerURI()
}

// backoff returns InitialBackoff * Multiplier^(attempt-1), jittered and capped at MaxBackoff.
func backoff(attempt int, rc *RetryConfig) time.Duration {
	d := float64(rc.InitialBackoff) * math.Pow(rc.Multiplier, float64(attempt-1))
	if rc.Jitter > 0 {
		d += d * rc.Jitter * (rand.Float64()*2 - 1)
	}
	if d > float64(rc.MaxBackoff) {
		d = float64(rc.MaxBackoff)
	}
	if d < 0 {
		d = float64(rc.InitialBackoff)
	}
	return time.Duration(d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// --- circuit breaker ---

type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

func (s circuitState) String() string {
	switch s {
	case circuitClosed:
		return "closed"
	case circuitOpen:
		return "open"
	default:
		return "half-open"
	}
}

// breaker counts consecutive transport failures of one endpoint. After
// maxFailures it opens; once openTimeout has elapsed a single trial request is
// let through and its outcome closes or re-opens the circuit.
type breaker struct {
	maxFailures int
	openTimeout time.Duration

	mu       sync.Mutex
	state    circuitState
	failures int
	openedAt time.Time
	trial    bool
}

func (b *breaker) current(now time.Time) circuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == circuitOpen && now.Sub(b.openedAt) >= b.openTimeout {
		return circuitHalfOpen
	}
	return b.state
}

func (b *breaker) allow(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case circuitClosed:
		return true
	case circuitOpen:
		if now.Sub(b.openedAt) < b.openTimeout {
			return false
		}
		b.state = circuitHalfOpen
		b.trial = true
		return true
	default:
		if b.trial {
			return false
		}
		b.trial = true
		return true
	}
}

// release ends a half-open trial without recording an outcome.
func (b *breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trial = false
}

func (b *breaker) record(success bool, now time.Time) (from, to circuitState, changed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	from = b.state
	switch {
	case success:
		b.failures = 0
		b.state = circuitClosed
	case b.state == circuitHalfOpen:
		b.state = circuitOpen
		b.openedAt = now
	default:
		b.failures++
		if b.failures >= b.maxFailures {
			b.state = circuitOpen
			b.openedAt = now
		}
	}
	b.trial = false
	return from, b.state, from != b.state
}
