// Package config loads solrkit configuration from a YAML file, a .env file
// and SOLRKIT_ environment variables.
//
//	var cfg config.Config
//	if err := config.LoadConfig("solrctl", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
//
// Environment variables override file values. Nested keys are joined with
// underscores, and map entries use their key as a path segment:
//
//	SOLRKIT_ADAPTER_TIMEOUT=10s
//	SOLRKIT_ENDPOINTS_PRIMARY_CORE=books
//	SOLRKIT_LOGGING_LEVEL=debug
package config
