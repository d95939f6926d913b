// Package errors defines the typed failures surfaced by solrkit.
//
// Every error produced by the adapter, the request model and the client is an
// *Error carrying a machine-readable ErrorCode. Transport failures additionally
// carry a TransportCode, the numeric error number of the failed exchange.
package errors
