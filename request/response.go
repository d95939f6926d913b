package request

import (
	"strconv"
	"strings"

	"github.com/kbukum/solrkit/errors"
)

// Response is the raw result of an executed request.
type Response struct {
	body          []byte
	headers       []string
	statusCode    int
	statusMessage string
}

// NewResponse creates a response from a body and raw header lines. The first
// header line must be a status line such as "HTTP/1.1 200 OK".
func NewResponse(body []byte, headers []string) (*Response, error) {
	if len(headers) == 0 {
		return nil, errors.UnexpectedValue("No headers available in response")
	}
	code, msg, err := parseStatusLine(headers[0])
	if err != nil {
		return nil, err
	}
	return &Response{
		body:          body,
		headers:       headers,
		statusCode:    code,
		statusMessage: msg,
	}, nil
}

// parseStatusLine splits "HTTP/1.1 404 Not Found" into 404 and "Not Found".
func parseStatusLine(line string) (int, string, error) {
	parts := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "HTTP/") {
		return 0, "", errors.UnexpectedValue("Malformed status line in response: " + line)
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil || code < 100 || code > 999 {
		return 0, "", errors.UnexpectedValue("Malformed status code in response: " + line)
	}
	msg := ""
	if len(parts) == 3 {
		msg = parts[2]
	}
	return code, msg, nil
}

// Body returns the response body.
func (r *Response) Body() []byte { return r.body }

// Headers returns the raw header lines, starting with the status line.
func (r *Response) Headers() []string { return r.headers }

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int { return r.statusCode }

// StatusMessage returns the reason phrase of the status line.
func (r *Response) StatusMessage() string { return r.statusMessage }

// Header returns the value of the first header line named name (case-insensitive).
func (r *Response) Header(name string) string {
	for _, line := range r.headers[1:] {
		k, v, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

// Check returns an HTTP_STATUS error carrying the status and body when the
// status code is 400 or above.
func (r *Response) Check() error {
	if r.statusCode < 400 {
		return nil
	}
	return errors.HTTPStatus(r.statusCode, r.statusMessage, r.body)
}
