// Package config reads service settings by dotted key.
package config

import (
	"io"
	"time"

	"github.com/shandysiswandi/goinstant/internal/pkg/instant"
)

// TimeConfig reads durations and instants.
type TimeConfig interface {
	// GetSecond treats the value as a whole number of seconds. Missing or
	// non-numeric values give zero.
	GetSecond(key string) time.Duration

	// GetMinute is GetSecond in minutes.
	GetMinute(key string) time.Duration

	// GetInstant parses the value in the nine-digit UTC wire form, for
	// example 2020-01-01T00:00:00.000000000Z. Unlike the other getters a
	// missing or malformed value is an error, never a zero instant.
	GetInstant(key string) (instant.Instant, error)
}

// NumberConfig reads numbers; missing keys give zero.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetFloat64(key string) float64
}

// Config is the read side every component depends on. Keys are dotted
// paths such as app.server.http.address.
type Config interface {
	io.Closer
	TimeConfig
	NumberConfig

	GetBool(key string) bool
	GetString(key string) string

	// GetArray splits a comma separated value, trimming blanks and dropping
	// empty elements.
	GetArray(key string) []string
}
