package app

import (
	"time"

	"github.com/hyperifyio/goreadable/internal/extract"
	"github.com/hyperifyio/goreadable/internal/fetch"
	"github.com/hyperifyio/goreadable/internal/score"
)

const (
	DefaultAddr    = ":8080"
	DefaultTimeout = 15 * time.Second
)

// Config holds runtime configuration for the application.
type Config struct {
	// Server
	Addr string

	// One-shot mode: when either is set the page is extracted once and the
	// payload printed instead of starting the server.
	URL  string
	File string

	// Fetch
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
	MaxBodyBytes   int64
	MaxRedirects   int
	MaxConcurrent  int

	// Extraction
	MaxChars     int
	Weights      score.Weights
	MinScore     float64
	SiblingRatio float64

	// Behavior
	ConfigPath string
	LogJSON    bool
	Verbose    bool
}

// DefaultConfig returns the built-in settings. Flags, environment and the
// config file are layered on top of it.
func DefaultConfig() Config {
	return Config{
		Addr:           DefaultAddr,
		UserAgent:      fetch.DefaultUserAgent,
		AcceptLanguage: fetch.DefaultAcceptLanguage,
		Timeout:        DefaultTimeout,
		MaxBodyBytes:   fetch.DefaultMaxBodyBytes,
		MaxRedirects:   5,
		MaxChars:       extract.DefaultMaxChars,
		Weights:        score.DefaultWeights(),
	}
}
