package httpadapter

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/solrkit/endpoint"
	"github.com/kbukum/solrkit/errors"
	"github.com/kbukum/solrkit/logger"
	"github.com/kbukum/solrkit/observability"
	"github.com/kbukum/solrkit/request"
)

type captured struct {
	method      string
	path        string
	query       string
	body        string
	contentType string
	header      http.Header
}

func capturingServer(t *testing.T, got *captured) string {
	t.Helper()
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*got = captured{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			body:        string(body),
			contentType: r.Header.Get("Content-Type"),
			header:      r.Header.Clone(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Solr", "ok")
		_, _ = w.Write([]byte(`{"responseHeader":{"status":0}}`))
	})
	return srv.URL
}

func TestExecute_Methods(t *testing.T) {
	tests := []struct {
		method   string
		rawData  []byte
		wantBody string
	}{
		{method: request.MethodGet},
		{method: request.MethodHead},
		{method: request.MethodDelete},
		{method: request.MethodPost, rawData: []byte("q=*:*"), wantBody: "q=*:*"},
		{method: request.MethodPut, rawData: []byte(`{"set":"x"}`), wantBody: `{"set":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			var got captured
			srvURL := capturingServer(t, &got)
			a := newAdapter(t, Config{})

			req := request.New(tt.method, "select").AddParam("q", "*:*")
			req.RawData = tt.rawData
			resp, err := a.Execute(context.Background(), req, endpointFor(t, srvURL))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.method != tt.method {
				t.Errorf("expected %s, got %s", tt.method, got.method)
			}
			if got.path != "/solr/books/select" {
				t.Errorf("expected /solr/books/select, got %s", got.path)
			}
			if got.query != "q=%2A%3A%2A" {
				t.Errorf("unexpected query %s", got.query)
			}
			if got.body != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, got.body)
			}
			if resp.StatusCode() != http.StatusOK {
				t.Errorf("expected 200, got %d", resp.StatusCode())
			}
			if tt.method == request.MethodHead {
				if len(resp.Body()) != 0 {
					t.Errorf("expected no body for HEAD, got %q", resp.Body())
				}
			} else if !strings.Contains(string(resp.Body()), "responseHeader") {
				t.Errorf("unexpected body %s", resp.Body())
			}
		})
	}
}

func TestExecute_UnsupportedMethod(t *testing.T) {
	var hits int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})
	a := newAdapter(t, Config{})

	_, err := a.Execute(context.Background(), request.New("PATCH", "select"), endpointFor(t, srv.URL))
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
	if !strings.Contains(err.Error(), "unsupported method: PATCH") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if hits != 0 {
		t.Error("no request should be sent for an unsupported method")
	}
}

func TestExecute_RawDataContentType(t *testing.T) {
	var got captured
	srvURL := capturingServer(t, &got)
	a := newAdapter(t, Config{})
	ep := endpointFor(t, srvURL)

	req := request.New(request.MethodPost, "select")
	req.RawData = []byte("q=*:*")
	if _, err := a.Execute(context.Background(), req, ep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.contentType != "application/x-www-form-urlencoded" {
		t.Errorf("expected form content type, got %s", got.contentType)
	}

	req = request.New(request.MethodPost, "update").AddHeader("Content-Type: application/json")
	req.RawData = []byte(`[{"id":"1"}]`)
	if _, err := a.Execute(context.Background(), req, ep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.contentType != "application/json" {
		t.Errorf("expected user content type, got %s", got.contentType)
	}
}

func TestExecute_FileUpload(t *testing.T) {
	for _, method := range []string{request.MethodPost, request.MethodPut} {
		t.Run(method, func(t *testing.T) {
			var (
				fileName, fileBody, partType string
				gotMethod                    string
			)
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				file, header, err := r.FormFile("file")
				if err != nil {
					t.Errorf("expected multipart file part: %v", err)
					return
				}
				defer file.Close()
				data, _ := io.ReadAll(file)
				fileName, fileBody, partType = header.Filename, string(data), header.Header.Get("Content-Type")
			})
			a := newAdapter(t, Config{})

			req := request.New(method, "update/extract").AddParam("literal.id", "doc1")
			req.FileUpload = &request.FileUpload{Name: "report.pdf", Reader: bytes.NewReader([]byte("%PDF-1.4"))}
			req.ContentType = "application/pdf"
			req.RawData = []byte("ignored")

			if _, err := a.Execute(context.Background(), req, endpointFor(t, srv.URL)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotMethod != method {
				t.Errorf("expected %s, got %s", method, gotMethod)
			}
			if fileName != "report.pdf" || fileBody != "%PDF-1.4" || partType != "application/pdf" {
				t.Errorf("unexpected upload name=%q body=%q type=%q", fileName, fileBody, partType)
			}
		})
	}
}

func TestExecute_Auth(t *testing.T) {
	basic := func(user, pass string) string {
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
	}

	tests := []struct {
		name     string
		endpoint func(*endpoint.Config)
		request  func(*request.Request)
		want     string
	}{
		{
			name:     "endpoint basic auth",
			endpoint: func(c *endpoint.Config) { c.Authentication = endpoint.Authentication{Username: "admin", Password: "s3cret"} },
			want:     basic("admin", "s3cret"),
		},
		{
			name:    "request basic auth when endpoint has none",
			request: func(r *request.Request) { r.SetAuthentication("reader", "pw") },
			want:    basic("reader", "pw"),
		},
		{
			name: "endpoint credentials win over request credentials",
			endpoint: func(c *endpoint.Config) {
				c.Authentication = endpoint.Authentication{Username: "admin", Password: "s3cret"}
			},
			request: func(r *request.Request) { r.SetAuthentication("reader", "pw") },
			want:    basic("admin", "s3cret"),
		},
		{
			name: "basic auth replaces user authorization header",
			endpoint: func(c *endpoint.Config) {
				c.Authentication = endpoint.Authentication{Username: "admin", Password: "s3cret"}
			},
			request: func(r *request.Request) { r.AddHeader("Authorization: Bearer user-token") },
			want:    basic("admin", "s3cret"),
		},
		{
			name: "basic auth takes priority over token",
			endpoint: func(c *endpoint.Config) {
				c.Authentication = endpoint.Authentication{Username: "admin", Password: "s3cret"}
				c.AuthorizationToken = endpoint.AuthorizationToken{TokenName: "Bearer", Token: "abc"}
			},
			want: basic("admin", "s3cret"),
		},
		{
			name:     "token when no credentials",
			endpoint: func(c *endpoint.Config) { c.AuthorizationToken = endpoint.AuthorizationToken{TokenName: "Bearer", Token: "abc"} },
			want:     "Bearer abc",
		},
		{
			name:     "user authorization header suppresses token",
			endpoint: func(c *endpoint.Config) { c.AuthorizationToken = endpoint.AuthorizationToken{TokenName: "Bearer", Token: "abc"} },
			request:  func(r *request.Request) { r.AddHeader("authorization: Custom xyz") },
			want:     "Custom xyz",
		},
		{
			name: "endpoint username without password blocks request credentials",
			endpoint: func(c *endpoint.Config) {
				c.Authentication = endpoint.Authentication{Username: "admin"}
				c.AuthorizationToken = endpoint.AuthorizationToken{TokenName: "Token", Token: "t"}
			},
			request: func(r *request.Request) { r.SetAuthentication("reader", "pw") },
			want:    "Token t",
		},
		{
			name:     "incomplete token is not sent",
			endpoint: func(c *endpoint.Config) { c.AuthorizationToken = endpoint.AuthorizationToken{Token: "abc"} },
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got captured
			srvURL := capturingServer(t, &got)
			a := newAdapter(t, Config{})

			var mutate []func(*endpoint.Config)
			if tt.endpoint != nil {
				mutate = append(mutate, tt.endpoint)
			}
			req := request.New(request.MethodGet, "select")
			if tt.request != nil {
				tt.request(req)
			}

			if _, err := a.Execute(context.Background(), req, endpointFor(t, srvURL, mutate...)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if values := got.header.Values("Authorization"); len(values) > 1 {
				t.Errorf("expected a single Authorization header, got %v", values)
			}
			if auth := got.header.Get("Authorization"); auth != tt.want {
				t.Errorf("expected Authorization %q, got %q", tt.want, auth)
			}
		})
	}
}

func TestExecute_Headers(t *testing.T) {
	var got captured
	srvURL := capturingServer(t, &got)
	a := newAdapter(t, Config{Headers: map[string]string{"X-Default": "d", "X-Override": "config"}})

	req := request.New(request.MethodGet, "select").AddHeaders(
		"X-Override: request",
		"X-Time: 12:30:00",
	)
	if _, err := a.Execute(context.Background(), req, endpointFor(t, srvURL)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.header.Get("X-Default") != "d" {
		t.Errorf("expected default header, got %q", got.header.Get("X-Default"))
	}
	if got.header.Get("X-Override") != "request" {
		t.Errorf("expected request header to win, got %q", got.header.Get("X-Override"))
	}
	if got.header.Get("X-Time") != "12:30:00" {
		t.Errorf("expected value with colons, got %q", got.header.Get("X-Time"))
	}
	if ua := got.header.Get("User-Agent"); !strings.HasPrefix(ua, "solrkit/") {
		t.Errorf("expected solrkit user agent, got %q", ua)
	}
}

func TestExecute_Response(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("X-Multi", "a")
		w.Header().Add("X-Multi", "b")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing core"))
	})
	a := newAdapter(t, Config{})

	resp, err := a.Execute(context.Background(), request.New(request.MethodGet, "select"), endpointFor(t, srv.URL))
	if err != nil {
		t.Fatalf("HTTP status should not be an adapter error, got %v", err)
	}
	if resp.Headers()[0] != "HTTP/1.1 404 Not Found" {
		t.Errorf("unexpected status line %q", resp.Headers()[0])
	}
	if resp.StatusCode() != 404 || resp.StatusMessage() != "Not Found" {
		t.Errorf("unexpected status %d %q", resp.StatusCode(), resp.StatusMessage())
	}
	lines := strings.Join(resp.Headers(), "\n")
	if !strings.Contains(lines, "X-Multi: a\nX-Multi: b") {
		t.Errorf("expected every header value, got %v", resp.Headers())
	}

	checkErr := resp.Check()
	if !errors.IsHTTPStatus(checkErr) {
		t.Fatalf("expected HTTP_STATUS from Check, got %v", checkErr)
	}
	if e, _ := errors.As(checkErr); string(e.Body) != "missing core" {
		t.Errorf("expected body on status error, got %q", e.Body)
	}
}

func TestExecute_NoCoreOrCollection(t *testing.T) {
	a := newAdapter(t, Config{})
	ep, _ := endpoint.New("bare", endpoint.Config{})

	_, err := a.Execute(context.Background(), request.New(request.MethodGet, "select"), ep)
	if !errors.IsUnexpectedValue(err) {
		t.Fatalf("expected UNEXPECTED_VALUE, got %v", err)
	}
}

func TestExecute_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	addr := "http://" + ln.Addr().String()
	_ = ln.Close()

	a := newAdapter(t, Config{})
	_, err = a.Execute(context.Background(), request.New(request.MethodGet, "select"), endpointFor(t, addr))

	e, ok := errors.As(err)
	if !ok || e.Code != errors.ErrCodeRequestFailed {
		t.Fatalf("expected HTTP_REQUEST_FAILED, got %v", err)
	}
	if e.TransportCode != errors.TransportCouldNotConnect {
		t.Errorf("expected transport code %d, got %d", errors.TransportCouldNotConnect, e.TransportCode)
	}
	if !strings.HasPrefix(e.Message, "HTTP request failed, ") {
		t.Errorf("unexpected message %q", e.Message)
	}
	if !e.Retryable {
		t.Error("connection failures should be retryable")
	}
}

func TestExecute_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	a := newAdapter(t, Config{Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := a.Execute(context.Background(), request.New(request.MethodGet, "select"), endpointFor(t, srv.URL))

	e, ok := errors.As(err)
	if !ok || e.TransportCode != errors.TransportOperationTimedOut {
		t.Fatalf("expected operation timed out, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout not applied, took %v", elapsed)
	}
}

func TestExecute_CallerCancel(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {})
	a := newAdapter(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Execute(ctx, request.New(request.MethodGet, "select"), endpointFor(t, srv.URL))

	e, ok := errors.As(err)
	if !ok || e.TransportCode != errors.TransportAborted {
		t.Fatalf("expected aborted, got %v", err)
	}
}

func TestExecute_Redirects(t *testing.T) {
	var hits int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Redirect(w, r, r.URL.Path, http.StatusFound)
	})

	t.Run("too many", func(t *testing.T) {
		atomic.StoreInt32(&hits, 0)
		a := newAdapter(t, Config{MaxRedirects: 3})
		_, err := a.Execute(context.Background(), request.New(request.MethodGet, "select"), endpointFor(t, srv.URL))

		e, ok := errors.As(err)
		if !ok || e.TransportCode != errors.TransportTooManyRedirects {
			t.Fatalf("expected too many redirects, got %v", err)
		}
		if hits != 4 {
			t.Errorf("expected 4 requests, got %d", hits)
		}
	})

	t.Run("none followed", func(t *testing.T) {
		atomic.StoreInt32(&hits, 0)
		a := newAdapter(t, Config{MaxRedirects: NoRedirects})
		_, err := a.Execute(context.Background(), request.New(request.MethodGet, "select"), endpointFor(t, srv.URL))

		e, ok := errors.As(err)
		if !ok || e.TransportCode != errors.TransportTooManyRedirects {
			t.Fatalf("expected too many redirects, got %v", err)
		}
		if hits != 1 {
			t.Errorf("expected 1 request, got %d", hits)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		a := newAdapter(t, Config{DisableRedirects: true})
		resp, err := a.Execute(context.Background(), request.New(request.MethodGet, "select"), endpointFor(t, srv.URL))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode() != http.StatusFound {
			t.Errorf("expected 302, got %d", resp.StatusCode())
		}
		if resp.Header("Location") != "/solr/books/select" {
			t.Errorf("unexpected Location %q", resp.Header("Location"))
		}
	})
}

func TestExecute_Proxy(t *testing.T) {
	var proxied string
	proxy := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		proxied = r.URL.String()
		_, _ = w.Write([]byte("via proxy"))
	})

	a := newAdapter(t, Config{Proxy: proxy.URL})
	ep, _ := endpoint.New("remote", endpoint.Config{Host: "solr.example.com", Port: 8983, Core: "books"})

	resp, err := a.Execute(context.Background(), request.New(request.MethodGet, "select"), ep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proxied != "http://solr.example.com:8983/solr/books/select" {
		t.Errorf("unexpected proxied URL %q", proxied)
	}
	if string(resp.Body()) != "via proxy" {
		t.Errorf("unexpected body %q", resp.Body())
	}
}

func TestExecute_TransportClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.TransportCode
	}{
		{"dns", &url.Error{Op: "Get", URL: "http://x", Err: &net.DNSError{Err: "no such host", Name: "x", IsNotFound: true}}, errors.TransportCouldNotResolveHost},
		{"proxy dns", &url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{Op: "proxyconnect", Net: "tcp", Err: &net.DNSError{Err: "no such host", Name: "proxy"}}}, errors.TransportCouldNotResolveProxy},
		{"empty reply", &url.Error{Op: "Get", URL: "http://x", Err: io.EOF}, errors.TransportGotNothing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAdapter(t, Config{}, WithHTTPClient(doerFunc(func(*http.Request) (*http.Response, error) {
				return nil, tt.err
			})))
			ep := endpoint.Default("x")
			ep.SetCore("books")
			_, err := a.Execute(context.Background(), request.New(request.MethodGet, "select"), ep)

			e, ok := errors.As(err)
			if !ok || e.Code != errors.ErrCodeRequestFailed {
				t.Fatalf("expected HTTP_REQUEST_FAILED, got %v", err)
			}
			if e.TransportCode != tt.want {
				t.Errorf("expected %d, got %d", tt.want, e.TransportCode)
			}
		})
	}
}

type failingBody struct{ closed bool }

func (b *failingBody) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func (b *failingBody) Close() error {
	b.closed = true
	return nil
}

func TestReadResponse(t *testing.T) {
	t.Run("body read failure discards response", func(t *testing.T) {
		body := &failingBody{}
		resp, err := readResponse(&http.Response{StatusCode: 200, Body: body, Header: http.Header{}}, nil)
		if resp != nil {
			t.Error("partial response should be discarded")
		}
		if !errors.IsRequestFailed(err) {
			t.Fatalf("expected HTTP_REQUEST_FAILED, got %v", err)
		}
		if !body.closed {
			t.Error("body should be closed")
		}
	})

	t.Run("synthesized status line", func(t *testing.T) {
		resp, err := readResponse(&http.Response{
			StatusCode: 503,
			Body:       io.NopCloser(strings.NewReader("")),
			Header:     http.Header{"Retry-After": {"5"}},
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Headers()[0] != "HTTP/1.1 503 Service Unavailable" {
			t.Errorf("unexpected status line %q", resp.Headers()[0])
		}
		if resp.Header("retry-after") != "5" {
			t.Errorf("unexpected Retry-After %q", resp.Header("retry-after"))
		}
	})
}

func TestSetters(t *testing.T) {
	a := newAdapter(t, Config{})

	if a.Timeout() != 5*time.Second {
		t.Errorf("expected default timeout 5s, got %v", a.Timeout())
	}
	a.SetTimeout(2 * time.Second)
	if a.Timeout() != 2*time.Second {
		t.Errorf("expected 2s, got %v", a.Timeout())
	}
	a.SetTimeout(0)
	if a.Timeout() != 5*time.Second {
		t.Errorf("expected reset to 5s, got %v", a.Timeout())
	}

	if a.ConnectionTimeout() != 0 {
		t.Errorf("expected unset connection timeout, got %v", a.ConnectionTimeout())
	}
	before := a.transport
	a.SetConnectionTimeout(time.Second)
	if a.ConnectionTimeout() != time.Second {
		t.Errorf("expected 1s, got %v", a.ConnectionTimeout())
	}
	if a.transport == before {
		t.Error("expected transport to be rebuilt")
	}

	if err := a.SetProxy("ftp://proxy:21"); !errors.IsInvalidArgument(err) {
		t.Errorf("expected INVALID_ARGUMENT, got %v", err)
	}
	if err := a.SetProxy("socks5://127.0.0.1:1080"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Proxy() != "socks5://127.0.0.1:1080" {
		t.Errorf("unexpected proxy %q", a.Proxy())
	}
	if err := a.SetProxy(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(Config{Proxy: "not a url"}); !errors.IsInvalidArgument(err) {
		t.Errorf("expected INVALID_ARGUMENT for proxy, got %v", err)
	}
	if _, err := New(Config{ConnectionTimeout: -time.Second}); err == nil {
		t.Error("expected error for negative connection timeout")
	}
	if _, err := New(Config{TLS: &TLSConfig{CertFile: "cert.pem"}}); err == nil {
		t.Error("expected error for cert without key")
	}
}

func TestNew_HTTP2(t *testing.T) {
	a := newAdapter(t, Config{HTTP2: true})
	if _, ok := a.transport.TLSNextProto["h2"]; !ok {
		t.Error("expected h2 to be configured")
	}
}

func TestExecute_Observability(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {})

	var logs bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &logs)
	reg := prometheus.NewRegistry()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	a := newAdapter(t, Config{},
		WithLogger(log),
		WithMetrics(observability.NewMetrics(reg)),
		WithTracer(tp.Tracer("test")),
	)
	ep := endpointFor(t, srv.URL, func(c *endpoint.Config) {
		c.Authentication = endpoint.Authentication{Username: "admin", Password: "s3cret"}
	})

	if _, err := a.Execute(context.Background(), request.New(request.MethodGet, "select"), ep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _ = a.Execute(context.Background(), request.New("PATCH", "select"), ep)

	if !strings.Contains(logs.String(), "request executed") || !strings.Contains(logs.String(), `"request_id"`) {
		t.Errorf("expected debug log with request id, got %s", logs.String())
	}
	if strings.Contains(logs.String(), "s3cret") {
		t.Error("credentials must not be logged")
	}
	if want := `"uri":"` + srv.URL + `/solr/books/select"`; !strings.Contains(logs.String(), want) {
		t.Errorf("expected %s in logs, got %s", want, logs.String())
	}

	if n, err := testutil.GatherAndCount(reg, "solrkit_adapter_requests_total"); err != nil || n != 2 {
		t.Errorf("expected 2 request series, got %d (%v)", n, err)
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name() != observability.SpanExecute {
		t.Errorf("unexpected span name %s", spans[0].Name())
	}
}
