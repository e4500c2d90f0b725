package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome Safari"
	DefaultAcceptLanguage = "de,en;q=0.9"
	DefaultMaxBodyBytes   = 10 << 20
	defaultRedirectHops   = 5
)

var (
	ErrMissingURL             = errors.New("missing url")
	ErrInvalidURL             = errors.New("invalid url")
	ErrSchemeNotAllowed       = errors.New("url scheme not allowed")
	ErrCredentialsNotAllowed  = errors.New("url credentials not allowed")
	ErrBlockedAddress         = errors.New("blocked connection to private or local address")
	ErrTooManyRedirects       = errors.New("too many redirects")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrBodyTooLarge           = errors.New("response body too large")
)

// Response is a fetched page. Status is passed through even when it is not
// 2xx.
type Response struct {
	URL         string
	Status      int
	ContentType string
	Charset     string
	Body        []byte
}

// Client issues a single GET per call with a fixed User-Agent and
// Accept-Language. Targets and every redirect hop must pass ValidateURL, and
// the default transport refuses to dial blocked addresses.
type Client struct {
	// HTTPClient, when set, supplies the transport. Its redirect policy is
	// replaced.
	HTTPClient     *http.Client
	UserAgent      string
	AcceptLanguage string
	// PerRequestTimeout bounds the whole request including the body read.
	PerRequestTimeout time.Duration
	// RedirectMaxHops caps redirect following. Zero means default (5), a
	// negative value disables redirects.
	RedirectMaxHops int
	// MaxBodyBytes caps the response body. Zero means default.
	MaxBodyBytes int64
	// AllowPrivateNetworks skips the dial-time address check.
	AllowPrivateNetworks bool
	// MaxConcurrent limits in-flight requests per client. Zero means no limit.
	MaxConcurrent int

	limiter       chan struct{}
	limiterOnce   sync.Once
	transportOnce sync.Once
	transport     http.RoundTripper
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Transport: c.defaultTransport(), CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) defaultTransport() http.RoundTripper {
	c.transportOnce.Do(func() {
		dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
		dial := dialer.DialContext
		if !c.AllowPrivateNetworks {
			dial = safeDialContext(dialer, net.DefaultResolver)
		}
		c.transport = &http.Transport{
			// no proxy: a proxy would dial on our behalf and bypass the check
			Proxy:                 nil,
			DialContext:           dial,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		}
	})
	return c.transport
}

// Get fetches rawURL once. Transport failures, policy violations and
// oversized bodies are errors; HTTP error statuses are not.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	lang := c.AcceptLanguage
	if lang == "" {
		lang = DefaultAcceptLanguage
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept-Language", lang)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,text/plain;q=0.8,*/*;q=0.5")

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if !isAllowedContentType(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}
	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	body, err := readLimited(resp.Body, limit)
	if err != nil {
		return nil, err
	}
	return &Response{
		URL:         resp.Request.URL.String(),
		Status:      resp.StatusCode,
		ContentType: contentType,
		Charset:     charsetOf(contentType),
		Body:        body,
	}, nil
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	switch {
	case max == 0:
		max = defaultRedirectHops
	case max < 0:
		max = 0
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) > max {
			return ErrTooManyRedirects
		}
		if _, err := ValidateURL(req.URL.String()); err != nil {
			return fmt.Errorf("redirect: %w", err)
		}
		return nil
	}
}

func (c *Client) acquire(ctx context.Context) error {
	if c.MaxConcurrent <= 0 {
		return nil
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	select {
	case c.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	<-c.limiter
}

// readLimited reads at most limit bytes and fails if the body is longer.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	// Read limit+1 bytes so we can detect overflow without a custom reader.
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (limit %d bytes)", ErrBodyTooLarge, limit)
	}
	return data, nil
}

func isAllowedContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" {
		return true
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		ct = mt
	}
	// allow text/html variants, application/xhtml+xml and plain text
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml") || strings.HasPrefix(ct, "text/plain")
}

func charsetOf(ct string) string {
	_, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}
