// Package adapter defines how solrkit talks to a transport.
//
// An Adapter executes one request.Request against one endpoint.Endpoint and
// returns the raw request.Response. Adapters never interpret the HTTP status:
// a 4xx or 5xx answer is a response, not an error. Only transport failures
// (HTTP_REQUEST_FAILED) and invalid requests (INVALID_ARGUMENT) are errors.
//
// The concrete net/http implementation lives in package httpadapter. This
// package holds the contract, the URI and upload-body helpers every adapter
// shares, and the WithResilience decorator.
package adapter
