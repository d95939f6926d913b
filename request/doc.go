// Package request holds the transport-neutral request and response model
// exchanged between a solrkit client and its adapters.
//
// A Request names a handler relative to an endpoint ("select", "update",
// "admin/ping"), carries query parameters, raw "Name: value" header lines and
// an optional body or file upload. Adapters turn it into a concrete transport
// call and hand back a Response built from the raw status line, headers and body.
package request
