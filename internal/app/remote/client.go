/*
Package remote implements settings.RemoteClient over HTTP.

It speaks the settings service's JSON envelope ({code, message, data}), sends
avatar uploads as multipart forms, retries idempotent reads with exponential
backoff and paces outgoing requests with a token bucket.
*/
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"usersettings/internal/app/settings"
	"usersettings/internal/pkg/logx"
)

const (
	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 4 << 20

	defaultTimeout = 15 * time.Second
)

// Config configures a Client.
type Config struct {
	// BaseURL is the scheme and host of the settings service, e.g. http://localhost:8080.
	BaseURL string

	// Token is the bearer token sent with every request. May be set later with SetToken.
	Token string

	// Timeout bounds a single HTTP attempt when HTTPClient is nil.
	Timeout time.Duration

	// MaxRetries is the number of extra attempts for GET requests.
	MaxRetries int

	// RateLimit is the sustained number of requests per second; 0 disables pacing.
	RateLimit float64

	// BackoffMin and BackoffMax bound the delay between retries.
	BackoffMin time.Duration
	BackoffMax time.Duration

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Client is the HTTP implementation of settings.RemoteClient.
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoffMin time.Duration
	backoffMax time.Duration
	logger     zerolog.Logger

	mu    sync.RWMutex
	token string
}

var _ settings.RemoteClient = (*Client)(nil)

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must use http or https", cfg.BaseURL)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must not be negative, got %d", cfg.MaxRetries)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	c := &Client{
		baseURL:    base,
		http:       httpClient,
		limiter:    limiter,
		maxRetries: cfg.MaxRetries,
		backoffMin: cfg.BackoffMin,
		backoffMax: cfg.BackoffMax,
		logger:     logx.Component("remote_client"),
		token:      cfg.Token,
	}
	if c.backoffMin <= 0 {
		c.backoffMin = 200 * time.Millisecond
	}
	if c.backoffMax <= 0 {
		c.backoffMax = 5 * time.Second
	}

	return c, nil
}

// SetToken replaces the bearer token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Do sends req and decodes the envelope's data into out.
// GET requests are retried on transport errors and 5xx responses; other methods are sent once.
func (c *Client) Do(ctx context.Context, req settings.Request, out any) error {
	body, contentType, err := encodeBody(req)
	if err != nil {
		return err
	}

	attempts := 1
	if req.Method == http.MethodGet {
		attempts += c.maxRetries
	}

	b := &backoff.Backoff{
		Min:    c.backoffMin,
		Max:    c.backoffMax,
		Factor: 2,
		Jitter: true,
	}

	for attempt := 1; ; attempt++ {
		err = c.once(ctx, req.Method, req.Path, body, contentType, out)
		if err == nil || attempt >= attempts || !retryable(ctx, err) {
			return err
		}

		delay := b.Duration()
		c.logger.Warn().
			Err(err).
			Str("method", req.Method).
			Str("path", req.Path).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("Request failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) once(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	res, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", res.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Request completed")

	return decodeEnvelope(res, out)
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

// encodeBody returns the wire body and its content type for req.
func encodeBody(req settings.Request) ([]byte, string, error) {
	switch {
	case req.File != nil:
		return encodeMultipart(req.File)
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return data, "application/json", nil
	default:
		return nil, "", nil
	}
}

func encodeMultipart(file *settings.AvatarFile) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		settings.AvatarFormField, escapeQuotes(file.Name)))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("write multipart part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}

	// transport failure
	return true
}
