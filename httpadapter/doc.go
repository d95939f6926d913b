// Package httpadapter executes solrkit requests over net/http.
//
// Each Execute call builds one *http.Request from a request.Request and an
// endpoint.Endpoint, sends it, reads and closes the response body, and
// returns a request.Response. Transport failures become HTTP_REQUEST_FAILED
// errors carrying an errors.TransportCode; HTTP error statuses are returned
// as regular responses.
//
//	a, err := httpadapter.New(httpadapter.Config{Timeout: 10 * time.Second})
//	resp, err := a.Execute(ctx, request.New(request.MethodGet, "select"), ep)
package httpadapter
