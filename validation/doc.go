// Package validation wraps go-playground/validator for scod's schema types.
//
// Struct-backed schema types validate decoded values with `validate` struct
// tags, and format-backed string types (url, email, hostname_port, ...)
// validate single values against a validator tag.
//
//	type ClientConfig struct {
//	    URL     string `json:"url" validate:"required,url"`
//	    Retries int    `json:"retries" validate:"min=0,max=10"`
//	}
//	issues := validation.Struct(cfg)
package validation
