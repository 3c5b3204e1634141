// Package validator provides a small validation abstraction for request
// structs.
//
// Business code depends on the Validator interface. V10Validator is backed by
// go-playground/validator v10 and adds the "instant" tag (wire-format
// nanosecond timestamp) and the "iana_zone" tag (loadable IANA zone name).
package validator
