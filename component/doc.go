// Package component defines the lifecycle contract of long-lived solrkit
// pieces such as the HTTP adapter, and a Registry that starts them in order
// and stops them in reverse.
package component
