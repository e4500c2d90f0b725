package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goreadable/internal/extract"
	sel "github.com/hyperifyio/goreadable/internal/select"
	"github.com/hyperifyio/goreadable/internal/server"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg       Config
	fetcher   server.Fetcher
	extractor extract.Extractor
}

// New validates cfg and wires the fetch client and extractor.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	gin.SetMode(gin.ReleaseMode)
	a := &App{
		cfg:     cfg,
		fetcher: newFetchClient(cfg),
		extractor: extract.ReadabilityExtractor{Options: extract.Options{
			Weights:  cfg.Weights,
			Select:   sel.Options{MinScore: cfg.MinScore, SiblingRatio: cfg.SiblingRatio},
			MaxChars: cfg.MaxChars,
		}},
	}
	log.Debug().
		Str("addr", cfg.Addr).
		Int("max_chars", cfg.MaxChars).
		Dur("timeout", cfg.Timeout).
		Int("patterns", len(cfg.Weights.Patterns)).
		Msg("app configured")
	return a, nil
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	s := &server.Server{Fetcher: a.fetcher, Extractor: a.extractor}
	return s.Handler()
}

// Run extracts once when a URL or file is configured and prints the payload
// to out; otherwise it serves the API until ctx is cancelled.
func (a *App) Run(ctx context.Context, out io.Writer) error {
	if a.cfg.URL != "" || a.cfg.File != "" {
		return a.Once(ctx, out)
	}
	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the API on ln and shuts down gracefully when ctx is done.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	log.Info().Str("addr", ln.Addr().String()).Msg("listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// Once fetches cfg.URL (or reads cfg.File), extracts it and writes the JSON
// payload to out.
func (a *App) Once(ctx context.Context, out io.Writer) error {
	var (
		payload server.Payload
		in      extract.Input
	)
	if a.cfg.File != "" {
		b, err := os.ReadFile(a.cfg.File)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		abs, err := filepath.Abs(a.cfg.File)
		if err != nil {
			abs = a.cfg.File
		}
		in = extract.Input{HTML: b, BaseURL: "file://" + filepath.ToSlash(abs)}
		payload = server.Payload{URL: a.cfg.File, Status: http.StatusOK}
	} else {
		resp, err := a.fetcher.Get(ctx, a.cfg.URL)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", a.cfg.URL, err)
		}
		in = extract.Input{HTML: resp.Body, Encoding: resp.Charset, BaseURL: resp.URL}
		payload = server.Payload{URL: a.cfg.URL, Status: resp.Status}
	}

	res, err := a.extractor.Extract(in)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	payload.Title = res.Title
	payload.Text = res.Text
	log.Debug().Bool("fallback", res.Fallback).Bool("truncated", res.Truncated).Str("encoding", res.Encoding).Msg("extracted")

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(payload)
}
