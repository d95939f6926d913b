package request

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/solrkit/endpoint"
	"github.com/kbukum/solrkit/errors"
)

// HTTP methods understood by adapters. Any other method is rejected at execution time.
const (
	MethodGet    = http.MethodGet
	MethodPost   = http.MethodPost
	MethodHead   = http.MethodHead
	MethodDelete = http.MethodDelete
	MethodPut    = http.MethodPut
)

// API versions.
const (
	APIV1 = "v1"
	APIV2 = "v2"
)

// boundaryNamespace seeds the deterministic multipart boundary of upload requests.
var boundaryNamespace = uuid.MustParse("5f0c4e8a-0d3b-4b8e-9a55-3c9d1c2e7a10")

// FileUpload is a file sent as the multipart body of a POST or PUT request.
// Either Path or Reader must be set; Name overrides the file name sent to the server.
type FileUpload struct {
	Path   string
	Name   string
	Reader io.Reader
}

// FileName returns the base name sent in the Content-Disposition header.
func (f *FileUpload) FileName() string {
	if f.Name != "" {
		return filepath.Base(f.Name)
	}
	if f.Path != "" {
		return filepath.Base(f.Path)
	}
	return "file"
}

// Open returns the upload content. The caller must close the returned reader.
func (f *FileUpload) Open() (io.ReadCloser, error) {
	if f.Reader != nil {
		if rc, ok := f.Reader.(io.ReadCloser); ok {
			return rc, nil
		}
		return io.NopCloser(f.Reader), nil
	}
	if f.Path == "" {
		return nil, errors.UnexpectedValue("file upload has neither a path nor a reader")
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, errors.Runtime("unable to read upload file "+f.Path, err)
	}
	return file, nil
}

// Request describes an outbound request to a Solr endpoint.
type Request struct {
	// Method is the HTTP method. Defaults to GET.
	Method string
	// Handler is the request handler path relative to the endpoint base URI ("select", "update").
	Handler string
	// Params are the query parameters. Multi-valued params are sent as repeated keys.
	Params url.Values
	// Headers are raw "Name: value" header lines.
	Headers []string
	// RawData is the request body for POST and PUT when no file upload is set.
	RawData []byte
	// FileUpload, when set, is sent as a multipart/form-data body.
	FileUpload *FileUpload
	// ContentType is the content type of the uploaded file part.
	ContentType string
	// Authentication is used when the endpoint carries no credentials.
	Authentication endpoint.Authentication
	// API selects the v1 or v2 API. Defaults to v1.
	API string
	// IsServerRequest targets the server (V1 base URI) rather than a core or collection.
	IsServerRequest bool
}

// New creates a request for handler with the given method.
func New(method, handler string) *Request {
	return &Request{Method: method, Handler: handler, Params: url.Values{}, API: APIV1}
}

// GetMethod returns the method, defaulting to GET.
func (r *Request) GetMethod() string {
	if r.Method == "" {
		return MethodGet
	}
	return r.Method
}

// GetAPI returns the API version, defaulting to v1.
func (r *Request) GetAPI() string {
	if r.API == "" {
		return APIV1
	}
	return r.API
}

// AddParam appends a value to a parameter. Empty keys are ignored.
func (r *Request) AddParam(key, value string) *Request {
	if key == "" {
		return r
	}
	if r.Params == nil {
		r.Params = url.Values{}
	}
	r.Params.Add(key, value)
	return r
}

// AddParams appends every value of every parameter.
func (r *Request) AddParams(params map[string][]string) *Request {
	for k, vs := range params {
		for _, v := range vs {
			r.AddParam(k, v)
		}
	}
	return r
}

// SetParam replaces all values of a parameter.
func (r *Request) SetParam(key, value string) *Request {
	if r.Params == nil {
		r.Params = url.Values{}
	}
	r.Params.Set(key, value)
	return r
}

// RemoveParam deletes a parameter.
func (r *Request) RemoveParam(key string) *Request {
	r.Params.Del(key)
	return r
}

// GetParam returns the first value of a parameter.
func (r *Request) GetParam(key string) string {
	return r.Params.Get(key)
}

// AddHeader appends a raw "Name: value" header line.
func (r *Request) AddHeader(line string) *Request {
	r.Headers = append(r.Headers, line)
	return r
}

// AddHeaders appends several raw header lines.
func (r *Request) AddHeaders(lines ...string) *Request {
	r.Headers = append(r.Headers, lines...)
	return r
}

// SetHeaders replaces all raw header lines.
func (r *Request) SetHeaders(lines ...string) *Request {
	r.Headers = append([]string(nil), lines...)
	return r
}

// GetHeader returns the value of the last header line named name
// (case-insensitive), or "" when absent.
func (r *Request) GetHeader(name string) string {
	return r.HeaderMap().Get(name)
}

// HeaderMap parses the raw header lines into an http.Header. Each line is split
// on its first colon, names and values are trimmed, and lines with an empty name
// or without a colon are skipped. A later line replaces an earlier one with the
// same name.
func (r *Request) HeaderMap() http.Header {
	h := make(http.Header, len(r.Headers))
	for _, line := range r.Headers {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		h.Set(name, strings.TrimSpace(value))
	}
	return h
}

// SetAuthentication sets request-level Basic credentials, used only when the
// endpoint has none.
func (r *Request) SetAuthentication(username, password string) *Request {
	r.Authentication = endpoint.Authentication{Username: username, Password: password}
	return r
}

// GetAuthentication returns the request-level Basic credentials.
func (r *Request) GetAuthentication() endpoint.Authentication {
	return r.Authentication
}

// QueryString returns the URL-encoded parameters sorted by key.
func (r *Request) QueryString() string {
	return r.Params.Encode()
}

// URI returns the handler followed by the query string, if any.
func (r *Request) URI() string {
	qs := r.QueryString()
	if qs == "" {
		return r.Handler
	}
	return r.Handler + "?" + qs
}

// Hash returns a stable identifier for the request, used as the multipart boundary.
func (r *Request) Hash() string {
	name := r.GetMethod() + " " + r.URI()
	if r.FileUpload != nil {
		name += " " + r.FileUpload.FileName()
	}
	return strings.ReplaceAll(uuid.NewSHA1(boundaryNamespace, []byte(name)).String(), "-", "")
}
