package gateway_http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/piresc/authgate/internal/pkg/circuitbreaker"
	"github.com/piresc/authgate/internal/pkg/constants"
	httpclient "github.com/piresc/authgate/internal/pkg/http"
	"github.com/piresc/authgate/internal/pkg/logger"
	"github.com/piresc/authgate/internal/pkg/models"
	"github.com/piresc/authgate/internal/pkg/retry"
	"github.com/piresc/authgate/services/auth"
)

const maxResponseBytes = 1 << 20

// Default failure messages when the backend sends no detail
const (
	msgSignupFailed      = "Signup failed"
	msgLoginFailed       = "Login failed"
	msgInvalidOTP        = "Invalid OTP"
	msgResendFailed      = "Failed to resend OTP"
	msgGoogleLoginFailed = "Google login failed"
	msgLogoutFailed      = "Logout failed"
)

// Config configures an AuthTransport
type Config struct {
	BaseURL string
	Timeout time.Duration
	Retries int
	// Jar keeps the backend session and CSRF cookies. A memory jar is used when nil.
	Jar       http.CookieJar
	Transport http.RoundTripper
	// Breaker short-circuits calls while the backend is failing. Optional.
	Breaker *circuitbreaker.CircuitBreaker
}

// authResponse is the backend's answer shape for every endpoint
type authResponse struct {
	Detail          string `json:"detail,omitempty"`
	Details         string `json:"details,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated,omitempty"`
	Username        string `json:"username,omitempty"`
	RequiresOTP     bool   `json:"requires_otp,omitempty"`
	UserID          int64  `json:"user_id,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPRequest struct {
	UserID  int64  `json:"user_id"`
	OTPCode string `json:"otp_code"`
}

type resendOTPRequest struct {
	UserID int64 `json:"user_id"`
}

type googleLoginRequest struct {
	Credential string `json:"credential"`
}

// AuthTransport talks to the external auth backend over HTTP
type AuthTransport struct {
	client  *httpclient.Client
	csrf    *CSRFAccessor
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
}

// NewAuthTransport creates a transport for the backend at cfg.BaseURL
func NewAuthTransport(cfg Config) *AuthTransport {
	jar := cfg.Jar
	if jar == nil {
		jar = NewMemoryJar()
	}

	client := httpclient.NewClient(httpclient.Config{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		Jar:       jar,
		Transport: cfg.Transport,
	})

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.Retries
	if retryCfg.MaxRetries < 0 {
		retryCfg.MaxRetries = 0
	}

	return &AuthTransport{
		client:  client,
		csrf:    NewCSRFAccessor(client, cfg.Breaker),
		retrier: retry.New(retryCfg, nil),
		breaker: cfg.Breaker,
	}
}

// Signup registers a new account. The signup name is sent as the username.
func (t *AuthTransport) Signup(ctx context.Context, creds models.SignupCredentials) (models.LoginResult, error) {
	resp, err := t.post(ctx, "signup", constants.PathSignup, signupRequest{
		Username: creds.Name,
		Email:    creds.Email,
		Password: creds.Password,
	}, msgSignupFailed)
	if err != nil {
		return nil, err
	}
	return loginResult(resp), nil
}

// Login submits username and password
func (t *AuthTransport) Login(ctx context.Context, creds models.Credentials) (models.LoginResult, error) {
	resp, err := t.post(ctx, "login", constants.PathLogin, loginRequest{
		Username: creds.Username,
		Password: creds.Password,
	}, msgLoginFailed)
	if err != nil {
		return nil, err
	}
	return loginResult(resp), nil
}

// VerifyOTP submits the one-time code for a pending challenge
func (t *AuthTransport) VerifyOTP(ctx context.Context, challenge models.OTPChallenge) (models.OTPVerified, error) {
	resp, err := t.post(ctx, "verify_otp", constants.PathVerifyOTP, verifyOTPRequest{
		UserID:  challenge.UserID,
		OTPCode: challenge.Code,
	}, msgInvalidOTP)
	if err != nil {
		return models.OTPVerified{}, err
	}
	return models.OTPVerified{Username: resp.Username, Detail: resp.Detail}, nil
}

// ResendOTP asks the backend to send a fresh code
func (t *AuthTransport) ResendOTP(ctx context.Context, userID int64) (models.OTPResent, error) {
	resp, err := t.post(ctx, "resend_otp", constants.PathResendOTP, resendOTPRequest{UserID: userID}, msgResendFailed)
	if err != nil {
		return models.OTPResent{}, err
	}
	return models.OTPResent{Detail: resp.Detail}, nil
}

// GoogleLogin forwards a Google ID token
func (t *AuthTransport) GoogleLogin(ctx context.Context, idToken string) (models.LoginResult, error) {
	resp, err := t.post(ctx, "google_login", constants.PathGoogleLogin, googleLoginRequest{Credential: idToken}, msgGoogleLoginFailed)
	if err != nil {
		return nil, err
	}
	return loginResult(resp), nil
}

// Logout ends the backend session
func (t *AuthTransport) Logout(ctx context.Context) error {
	_, err := t.post(ctx, "logout", constants.PathLogout, nil, msgLogoutFailed)
	return err
}

// CheckSession reports whether the backend session is authenticated.
// HTTP-level failures read as unauthenticated.
func (t *AuthTransport) CheckSession(ctx context.Context) (models.SessionStatus, error) {
	resp, status, err := t.get(ctx, "check_session", constants.PathSession)
	if err != nil {
		return models.SessionStatus{}, err
	}
	if !isSuccess(status) || resp == nil {
		return models.SessionStatus{}, nil
	}
	return models.SessionStatus{IsAuthenticated: resp.IsAuthenticated}, nil
}

// Whoami returns the current username. HTTP-level failures read as anonymous.
func (t *AuthTransport) Whoami(ctx context.Context) (models.Identity, error) {
	resp, status, err := t.get(ctx, "whoami", constants.PathWhoAmI)
	if err != nil {
		return models.Identity{}, err
	}
	if !isSuccess(status) || resp == nil {
		return models.Identity{}, nil
	}
	return models.Identity{Username: resp.Username}, nil
}

// post primes the CSRF cookie, then sends a mutating request. An open
// breaker fails the call before anything reaches the backend.
func (t *AuthTransport) post(ctx context.Context, op, path string, body interface{}, defaultMsg string) (*authResponse, error) {
	if err := t.csrf.Prime(ctx); breakerRejected(err) {
		logger.Error("Auth backend unreachable",
			logger.String("op", op),
			logger.Err(err))
		return nil, &auth.NetworkError{Op: op, Err: err}
	}
	headers := t.csrf.Header()

	httpResp, err := t.do(ctx, func(ctx context.Context) (*http.Response, error) {
		return t.client.DoWithHeaders(ctx, http.MethodPost, path, body, headers)
	})
	if err != nil {
		logger.Error("Auth backend unreachable",
			logger.String("op", op),
			logger.Err(err))
		return nil, &auth.NetworkError{Op: op, Err: err}
	}
	defer httpResp.Body.Close()

	resp := decode(httpResp.Body)
	if !isSuccess(httpResp.StatusCode) {
		msg := defaultMsg
		if resp != nil && resp.Detail != "" {
			msg = resp.Detail
		} else if resp != nil && resp.Details != "" {
			msg = resp.Details
		}

		logger.Warn("Auth backend rejected request",
			logger.String("op", op),
			logger.Int("status_code", httpResp.StatusCode),
			logger.String("detail", msg))
		return nil, &auth.TransportError{Op: op, StatusCode: httpResp.StatusCode, Message: msg}
	}

	if resp == nil {
		resp = &authResponse{}
	}
	return resp, nil
}

// get sends an idempotent request, retrying network failures
func (t *AuthTransport) get(ctx context.Context, op, path string) (*authResponse, int, error) {
	var (
		resp   *authResponse
		status int
	)

	err := t.retrier.Execute(ctx, func(ctx context.Context) error {
		httpResp, err := t.do(ctx, func(ctx context.Context) (*http.Response, error) {
			return t.client.Get(ctx, path)
		})
		if err != nil {
			return err
		}
		defer httpResp.Body.Close()

		status = httpResp.StatusCode
		resp = decode(httpResp.Body)
		return nil
	})
	if err != nil {
		logger.Error("Auth backend unreachable",
			logger.String("op", op),
			logger.Err(err))
		return nil, 0, &auth.NetworkError{Op: op, Err: err}
	}

	return resp, status, nil
}

// do sends one request through the breaker, if any. Only failures to get a
// response count against the backend.
func (t *AuthTransport) do(ctx context.Context, send func(context.Context) (*http.Response, error)) (*http.Response, error) {
	if t.breaker == nil {
		return send(ctx)
	}

	var resp *http.Response
	err := t.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		resp, err = send(ctx)
		return err
	})
	return resp, err
}

func breakerRejected(err error) bool {
	return errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen) ||
		errors.Is(err, circuitbreaker.ErrTooManyRequests)
}

// decode returns nil for an empty or malformed body
func decode(body io.Reader) *authResponse {
	var resp authResponse
	if err := json.NewDecoder(io.LimitReader(body, maxResponseBytes)).Decode(&resp); err != nil {
		return nil
	}
	return &resp
}

func loginResult(resp *authResponse) models.LoginResult {
	if resp.RequiresOTP && resp.UserID != 0 {
		return models.OTPRequired{UserID: resp.UserID}
	}
	return models.Authenticated{Username: resp.Username}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
