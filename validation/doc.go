// Package validation validates solrkit configuration structs using
// go-playground/validator struct tags.
//
//	type Config struct {
//	    Host  string `mapstructure:"host" validate:"required,hostname_rfc1123|ip"`
//	    Proxy string `mapstructure:"proxy" validate:"omitempty,proxy_url"`
//	}
//	err := validation.Validate(cfg)
//
// Failures are returned as INVALID_ARGUMENT errors whose details list every
// offending field by its configuration key.
package validation
