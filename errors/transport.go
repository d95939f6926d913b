package errors

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	stderrors "errors"
	"io"
	"net"
	"strings"
)

// TransportCode is the error number of a failed HTTP exchange. Values follow
// libcurl's CURLcode numbering.
type TransportCode int

const (
	// TransportUnknown is a failure that could not be classified.
	TransportUnknown TransportCode = -1
	// TransportOK means no transport failure occurred.
	TransportOK TransportCode = 0
	// TransportUnsupportedProtocol is an unsupported URL scheme.
	TransportUnsupportedProtocol TransportCode = 1
	// TransportURLMalformed is a URL that could not be parsed.
	TransportURLMalformed TransportCode = 3
	// TransportCouldNotResolveProxy is a DNS failure for the proxy host.
	TransportCouldNotResolveProxy TransportCode = 5
	// TransportCouldNotResolveHost is a DNS failure for the target host.
	TransportCouldNotResolveHost TransportCode = 6
	// TransportCouldNotConnect is a refused or unreachable TCP connect.
	TransportCouldNotConnect TransportCode = 7
	// TransportOperationTimedOut is a connect or overall timeout.
	TransportOperationTimedOut TransportCode = 28
	// TransportSSLConnectError is a failed TLS handshake.
	TransportSSLConnectError TransportCode = 35
	// TransportAborted is a request cancelled by the caller.
	TransportAborted TransportCode = 42
	// TransportTooManyRedirects is a redirect chain over the limit.
	TransportTooManyRedirects TransportCode = 47
	// TransportGotNothing is a connection closed before any response.
	TransportGotNothing TransportCode = 52
	// TransportSendError is a failure writing the request.
	TransportSendError TransportCode = 55
	// TransportRecvError is a failure reading the response.
	TransportRecvError TransportCode = 56
	// TransportPeerFailedVerification is a server certificate that did not verify.
	TransportPeerFailedVerification TransportCode = 60
)

// ErrTooManyRedirects is returned by redirect policies that give up.
var ErrTooManyRedirects = stderrors.New("too many redirects")

// String returns the transport code name.
func (c TransportCode) String() string {
	switch c {
	case TransportOK:
		return "ok"
	case TransportUnsupportedProtocol:
		return "unsupported_protocol"
	case TransportURLMalformed:
		return "url_malformed"
	case TransportCouldNotResolveProxy:
		return "couldnt_resolve_proxy"
	case TransportCouldNotResolveHost:
		return "couldnt_resolve_host"
	case TransportCouldNotConnect:
		return "couldnt_connect"
	case TransportOperationTimedOut:
		return "operation_timedout"
	case TransportSSLConnectError:
		return "ssl_connect_error"
	case TransportAborted:
		return "aborted"
	case TransportTooManyRedirects:
		return "too_many_redirects"
	case TransportGotNothing:
		return "got_nothing"
	case TransportSendError:
		return "send_error"
	case TransportRecvError:
		return "recv_error"
	case TransportPeerFailedVerification:
		return "peer_failed_verification"
	default:
		return "unknown"
	}
}

// Retryable reports whether a failure with this code may succeed on a new attempt.
func (c TransportCode) Retryable() bool {
	switch c {
	case TransportCouldNotResolveHost, TransportCouldNotResolveProxy, TransportCouldNotConnect,
		TransportOperationTimedOut, TransportGotNothing, TransportSendError, TransportRecvError:
		return true
	default:
		return false
	}
}

// ClassifyTransport maps an error returned by an http.Client into a TransportCode.
// A nil error classifies as TransportOK; every non-nil error classifies as non-zero.
func ClassifyTransport(err error) TransportCode {
	if err == nil {
		return TransportOK
	}

	switch {
	case stderrors.Is(err, ErrTooManyRedirects):
		return TransportTooManyRedirects
	case stderrors.Is(err, context.Canceled):
		return TransportAborted
	case stderrors.Is(err, context.DeadlineExceeded):
		return TransportOperationTimedOut
	}

	var opErr *net.OpError
	hasOp := stderrors.As(err, &opErr)
	viaProxy := hasOp && opErr.Op == "proxyconnect"

	var dnsErr *net.DNSError
	if stderrors.As(err, &dnsErr) {
		if viaProxy {
			return TransportCouldNotResolveProxy
		}
		return TransportCouldNotResolveHost
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return TransportOperationTimedOut
	}

	if code, ok := classifyTLS(err); ok {
		return code
	}

	if hasOp {
		switch opErr.Op {
		case "dial", "proxyconnect":
			return TransportCouldNotConnect
		case "write":
			return TransportSendError
		case "read":
			return TransportRecvError
		}
	}

	if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return TransportGotNothing
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "unsupported protocol scheme"):
		return TransportUnsupportedProtocol
	case strings.Contains(msg, "no Host in request URL"), strings.Contains(msg, "invalid URL"):
		return TransportURLMalformed
	case strings.Contains(msg, "server gave HTTP response to HTTPS client"):
		return TransportSSLConnectError
	}

	return TransportUnknown
}

func classifyTLS(err error) (TransportCode, bool) {
	var (
		verifyErr   *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		invalidErr  x509.CertificateInvalidError
		recordErr   tls.RecordHeaderError
		alertErr    tls.AlertError
	)
	switch {
	case stderrors.As(err, &verifyErr),
		stderrors.As(err, &unknownAuth),
		stderrors.As(err, &hostnameErr),
		stderrors.As(err, &invalidErr):
		return TransportPeerFailedVerification, true
	case stderrors.As(err, &recordErr), stderrors.As(err, &alertErr):
		return TransportSSLConnectError, true
	}
	return TransportUnknown, false
}
