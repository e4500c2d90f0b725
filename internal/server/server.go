// Package server exposes the extraction pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goreadable/internal/extract"
	"github.com/hyperifyio/goreadable/internal/fetch"
)

// Fetcher retrieves a page. *fetch.Client implements it.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (*fetch.Response, error)
}

// Payload is the success envelope of GET /api/scrape.
type Payload struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Status int    `json:"status"`
}

type errorBody struct {
	Error string `json:"error"`
}

type Server struct {
	Fetcher   Fetcher
	Extractor extract.Extractor
}

// Handler builds the gin engine with request logging and panic recovery.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/api/scrape", s.scrape)
	return r
}

func (s *Server) scrape(c *gin.Context) {
	target := c.Query("url")
	resp, err := s.Fetcher.Get(c.Request.Context(), target)
	if err != nil {
		code, msg := StatusFor(err)
		log.Warn().Err(err).Str("url", target).Int("code", code).Msg("fetch rejected")
		c.JSON(code, errorBody{Error: msg})
		return
	}
	res, err := s.Extractor.Extract(extract.Input{HTML: resp.Body, Encoding: resp.Charset, BaseURL: resp.URL})
	if err != nil {
		log.Error().Err(err).Str("url", target).Msg("extract failed")
		c.JSON(http.StatusInternalServerError, errorBody{Error: "Failed to parse content."})
		return
	}
	log.Info().
		Str("url", target).
		Int("status", resp.Status).
		Int("bytes", len(resp.Body)).
		Bool("fallback", res.Fallback).
		Bool("truncated", res.Truncated).
		Msg("scraped")
	c.JSON(http.StatusOK, Payload{URL: target, Title: res.Title, Text: res.Text, Status: resp.Status})
}

// StatusFor maps a fetch error to the response code and client-facing message.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, fetch.ErrMissingURL):
		return http.StatusBadRequest, "Missing url parameter ?url="
	case errors.Is(err, fetch.ErrSchemeNotAllowed):
		return http.StatusBadRequest, "URL scheme not allowed."
	case errors.Is(err, fetch.ErrCredentialsNotAllowed):
		return http.StatusBadRequest, "URL credentials not allowed."
	case errors.Is(err, fetch.ErrInvalidURL):
		return http.StatusBadRequest, "Invalid url."
	case errors.Is(err, fetch.ErrBlockedAddress):
		return http.StatusForbidden, "Destination address not allowed."
	case errors.Is(err, fetch.ErrUnsupportedContentType):
		return http.StatusUnsupportedMediaType, "Unsupported content type."
	default:
		return http.StatusInternalServerError, "Failed to fetch url."
	}
}
