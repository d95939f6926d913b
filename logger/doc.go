// Package logger provides structured logging for solrkit using zerolog.
//
// Logs go to stdout, stderr, or a rotating file (any other Output value is
// treated as a file path and rotated with lumberjack).
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//	  output: "/var/log/solrctl.log"
//	  max_size: 50
//
// # Usage
//
//	log := logger.New(&cfg, "solrctl").WithComponent("httpadapter")
//	log.Debug("request sent", logger.Fields("method", "GET", "uri", uri))
package logger
