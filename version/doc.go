// Package version carries solrkit build information.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/solrkit/version.Version=1.2.0" ./cmd/solrctl
//
// UserAgent is sent by the HTTP adapter when no User-Agent is configured.
package version
