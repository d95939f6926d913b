package adapter

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/kbukum/solrkit/endpoint"
	"github.com/kbukum/solrkit/errors"
	"github.com/kbukum/solrkit/request"
)

const defaultUploadContentType = "application/octet-stream"

// BuildURI returns the absolute URI of req on ep: the v2 API base for v2
// requests, the v1 base for server requests, and the core or collection base
// otherwise.
func BuildURI(req *request.Request, ep *endpoint.Endpoint) (string, error) {
	var base string
	switch {
	case req.GetAPI() == request.APIV2:
		base = ep.V2BaseURI()
	case req.IsServerRequest:
		base = ep.V1BaseURI()
	default:
		var err error
		if base, err = ep.BaseURI(); err != nil {
			return "", err
		}
	}
	return base + strings.TrimLeft(req.URI(), "/"), nil
}

// BuildUploadBody encodes req.FileUpload as a multipart/form-data body with a
// single "file" part. It returns the body and the Content-Type header value;
// the boundary is req.Hash().
func BuildUploadBody(req *request.Request) ([]byte, string, error) {
	if req.FileUpload == nil {
		return nil, "", errors.UnexpectedValue("request has no file upload")
	}

	src, err := req.FileUpload.Open()
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = src.Close() }()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(req.Hash()); err != nil {
		return nil, "", errors.Runtime("invalid multipart boundary", err)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = defaultUploadContentType
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(req.FileUpload.FileName())))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", errors.Runtime("create multipart part", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", errors.Runtime("read upload file", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Runtime("close multipart body", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

// escapeQuotes escapes quotes and backslashes in a quoted header parameter.
func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
