package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/goreadable/internal/extract"
	"github.com/hyperifyio/goreadable/internal/fetch"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubFetcher struct {
	resp *fetch.Response
	err  error
	got  string
}

func (s *stubFetcher) Get(ctx context.Context, rawURL string) (*fetch.Response, error) {
	s.got = rawURL
	return s.resp, s.err
}

const articleHTML = `<html><head><title>Doc</title></head><body><nav>Home About</nav><article><h1>T</h1><p>Lorem ipsum dolor sit amet, consectetur adipiscing elit.</p></article></body></html>`

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	h.ServeHTTP(rec, req)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return rec, body
}

func TestScrape_Success(t *testing.T) {
	f := &stubFetcher{resp: &fetch.Response{URL: "https://example.com/a", Status: 200, Body: []byte(articleHTML)}}
	s := &Server{Fetcher: f, Extractor: extract.ReadabilityExtractor{}}

	rec, body := get(t, s.Handler(), "/api/scrape?url="+url.QueryEscape("https://example.com/a"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com/a", f.got)
	assert.Equal(t, "https://example.com/a", body["url"])
	assert.Equal(t, "T", body["title"])
	assert.Equal(t, "Lorem ipsum dolor sit amet, consectetur adipiscing elit.", body["text"])
	assert.EqualValues(t, 200, body["status"])
}

func TestScrape_UpstreamStatusPassedThrough(t *testing.T) {
	f := &stubFetcher{resp: &fetch.Response{URL: "https://example.com/gone", Status: 404, Body: []byte(`<p>Not here</p>`)}}
	s := &Server{Fetcher: f, Extractor: extract.ReadabilityExtractor{}}

	rec, body := get(t, s.Handler(), "/api/scrape?url=https://example.com/gone")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 404, body["status"])
	assert.Equal(t, "Not here", body["text"])
}

func TestScrape_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{fetch.ErrMissingURL, http.StatusBadRequest, "Missing url parameter ?url="},
		{fmt.Errorf("%w: %q", fetch.ErrSchemeNotAllowed, "ftp"), http.StatusBadRequest, "URL scheme not allowed."},
		{fetch.ErrCredentialsNotAllowed, http.StatusBadRequest, "URL credentials not allowed."},
		{fmt.Errorf("%w: missing host", fetch.ErrInvalidURL), http.StatusBadRequest, "Invalid url."},
		{&url.Error{Op: "Get", URL: "https://x", Err: fetch.ErrBlockedAddress}, http.StatusForbidden, "Destination address not allowed."},
		{fmt.Errorf("%w: application/pdf", fetch.ErrUnsupportedContentType), http.StatusUnsupportedMediaType, "Unsupported content type."},
		{fetch.ErrBodyTooLarge, http.StatusInternalServerError, "Failed to fetch url."},
		{context.DeadlineExceeded, http.StatusInternalServerError, "Failed to fetch url."},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			s := &Server{Fetcher: &stubFetcher{err: tt.err}, Extractor: extract.ReadabilityExtractor{}}
			rec, body := get(t, s.Handler(), "/api/scrape?url=x")
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestScrape_MalformedMarkupIs500(t *testing.T) {
	f := &stubFetcher{resp: &fetch.Response{URL: "https://example.com", Status: 200, Charset: "no-such-charset", Body: []byte("<p>x</p>")}}
	s := &Server{Fetcher: f, Extractor: extract.ReadabilityExtractor{}}

	rec, body := get(t, s.Handler(), "/api/scrape?url=https://example.com")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to parse content.", body["error"])
}

func TestHealthz(t *testing.T) {
	s := &Server{Fetcher: &stubFetcher{}, Extractor: extract.ReadabilityExtractor{}}
	rec, body := get(t, s.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestScrape_EndToEnd(t *testing.T) {
	upstream := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer upstream.Close()

	client := &fetch.Client{HTTPClient: upstream.Client(), PerRequestTimeout: 2 * time.Second}
	s := &Server{Fetcher: client, Extractor: extract.ReadabilityExtractor{}}

	rec, body := get(t, s.Handler(), "/api/scrape?url="+url.QueryEscape(upstream.URL))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "T", body["title"])
	assert.EqualValues(t, 200, body["status"])
}

func TestScrape_LoopbackBlocked(t *testing.T) {
	upstream := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("loopback upstream must not be contacted")
	}))
	defer upstream.Close()

	s := &Server{Fetcher: &fetch.Client{PerRequestTimeout: 2 * time.Second}, Extractor: extract.ReadabilityExtractor{}}
	rec, body := get(t, s.Handler(), "/api/scrape?url="+url.QueryEscape(upstream.URL))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Destination address not allowed.", body["error"])
}
