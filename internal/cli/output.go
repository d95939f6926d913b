package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kbukum/solrkit/errors"
	"github.com/kbukum/solrkit/request"
)

// printResponse writes the status line (or every header line when
// includeHeaders is set), a blank line and the body. It returns the
// HTTP_STATUS error of responses with a status of 400 or above.
func printResponse(w io.Writer, resp *request.Response, includeHeaders bool) error {
	headers := resp.Headers()
	if !includeHeaders {
		headers = headers[:1]
	}
	for _, line := range headers {
		fmt.Fprintln(w, line)
	}
	if body := resp.Body(); len(body) > 0 {
		fmt.Fprintln(w)
		w.Write(body)
		if !bytes.HasSuffix(body, []byte("\n")) {
			fmt.Fprintln(w)
		}
	}
	return resp.Check()
}

// parseParams turns "key=value" arguments into request parameters.
func parseParams(req *request.Request, pairs []string) error {
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return errors.InvalidArgumentf("invalid parameter %q, expected key=value", pair)
		}
		req.AddParam(key, value)
	}
	return nil
}

// readData returns the request body. "@path" reads a file and "@-" reads stdin.
func readData(data string, stdin io.Reader) ([]byte, error) {
	if !strings.HasPrefix(data, "@") {
		return []byte(data), nil
	}
	name := strings.TrimPrefix(data, "@")
	if name == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Runtime("unable to read stdin", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Runtime("unable to read data file "+name, err)
	}
	return b, nil
}
