package gateway_http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/piresc/authgate/internal/pkg/circuitbreaker"
	"github.com/piresc/authgate/internal/pkg/constants"
	httpclient "github.com/piresc/authgate/internal/pkg/http"
	"github.com/piresc/authgate/internal/pkg/logger"
)

// CSRFAccessor reads the backend's CSRF cookie out of the client's jar
type CSRFAccessor struct {
	client     *httpclient.Client
	breaker    *circuitbreaker.CircuitBreaker
	sessionURL *url.URL
}

// NewCSRFAccessor creates an accessor bound to the client's base URL and jar.
// Priming goes through breaker when one is given.
func NewCSRFAccessor(client *httpclient.Client, breaker *circuitbreaker.CircuitBreaker) *CSRFAccessor {
	sessionURL, err := url.Parse(strings.TrimSuffix(client.BaseURL(), "/") + constants.PathSession)
	if err != nil {
		logger.Warn("Invalid auth backend URL, CSRF token disabled",
			logger.String("base_url", client.BaseURL()),
			logger.Err(err))
		sessionURL = nil
	}
	return &CSRFAccessor{client: client, breaker: breaker, sessionURL: sessionURL}
}

// Prime issues GET /session/ so the backend sets the csrftoken cookie.
// Failures are logged and returned; callers may go on without a token.
func (a *CSRFAccessor) Prime(ctx context.Context) error {
	get := func(ctx context.Context) error {
		resp, err := a.client.Get(ctx, constants.PathSession)
		if err != nil {
			return err
		}
		io.Copy(io.Discard, resp.Body)
		return resp.Body.Close()
	}

	var err error
	if a.breaker != nil {
		err = a.breaker.Execute(ctx, get)
	} else {
		err = get(ctx)
	}
	if err != nil {
		logger.Warn("Failed to prime CSRF token", logger.Err(err))
	}
	return err
}

// Header returns the CSRF header to send, empty when there is no token
func (a *CSRFAccessor) Header() http.Header {
	headers := http.Header{}
	if token := a.Token(); token != "" {
		headers.Set(constants.CSRFHeader, token)
	}
	return headers
}

// Token returns the current csrftoken cookie value, or "" when absent
func (a *CSRFAccessor) Token() string {
	jar := a.client.Jar()
	if jar == nil || a.sessionURL == nil {
		return ""
	}
	for _, cookie := range jar.Cookies(a.sessionURL) {
		if cookie.Name == constants.CSRFCookie {
			return cookie.Value
		}
	}
	return ""
}
