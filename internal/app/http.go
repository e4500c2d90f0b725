package app

import (
	"github.com/hyperifyio/goreadable/internal/fetch"
)

// newFetchClient returns the outbound client for cfg. It uses the fetch
// package's own transport so the dial-time address check stays in place.
func newFetchClient(cfg Config) *fetch.Client {
	hops := cfg.MaxRedirects
	if hops == 0 {
		// the fetch client reads zero as its default
		hops = -1
	}
	return &fetch.Client{
		UserAgent:         cfg.UserAgent,
		AcceptLanguage:    cfg.AcceptLanguage,
		PerRequestTimeout: cfg.Timeout,
		RedirectMaxHops:   hops,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		MaxConcurrent:     cfg.MaxConcurrent,
	}
}
