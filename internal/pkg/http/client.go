package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/piresc/authgate/internal/pkg/logger"
)

// DefaultTimeout for HTTP requests
const DefaultTimeout = 10 * time.Second

// Config configures a Client
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Jar keeps cookies the remote service sets (session, csrf) between calls
	Jar nethttp.CookieJar
	// Transport overrides the round tripper, mostly for tests
	Transport nethttp.RoundTripper
}

// Client is a generic JSON HTTP client bound to one base URL
type Client struct {
	baseURL    string
	httpClient *nethttp.Client
}

// NewClient creates a new HTTP client
func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: config.BaseURL,
		httpClient: &nethttp.Client{
			Timeout:   timeout,
			Jar:       config.Jar,
			Transport: config.Transport,
		},
	}
}

// BaseURL returns the base URL every endpoint is resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Jar returns the cookie jar attached to the client, if any
func (c *Client) Jar() nethttp.CookieJar {
	return c.httpClient.Jar
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, endpoint string) (*nethttp.Response, error) {
	return c.DoWithHeaders(ctx, nethttp.MethodGet, endpoint, nil, nil)
}

// DoWithHeaders performs the actual HTTP request. HTTP error statuses are not
// errors here; callers inspect resp.StatusCode.
func (c *Client) DoWithHeaders(ctx context.Context, method, endpoint string, body interface{}, headers nethttp.Header) (*nethttp.Response, error) {
	url := strings.TrimSuffix(c.baseURL, "/") + endpoint

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	logger.Debug("Making HTTP request",
		logger.String("method", method),
		logger.String("url", url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	logger.Debug("HTTP request completed",
		logger.String("method", method),
		logger.String("url", url),
		logger.Int("status_code", resp.StatusCode))

	return resp, nil
}

type contextKey string

// RequestIDKey carries the inbound request id so outbound calls can echo it
const RequestIDKey contextKey = "request_id"

// WithRequestID returns a context whose outbound requests carry X-Request-ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}
