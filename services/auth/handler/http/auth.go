package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/piresc/authgate/internal/pkg/logger"
	"github.com/piresc/authgate/internal/pkg/models"
	"github.com/piresc/authgate/internal/utils"
	"github.com/piresc/authgate/services/auth"
)

type googleRequest struct {
	Credential string `json:"credential"`
}

type otpRequest struct {
	OTPCode string `json:"otpCode"`
}

type logoutFailure struct {
	Retryable bool           `json:"retryable"`
	Session   models.Session `json:"session"`
}

// AuthHandler handles the BFF sign-in routes
type AuthHandler struct {
	authUC auth.AuthUC
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUC auth.AuthUC) *AuthHandler {
	return &AuthHandler{
		authUC: authUC,
	}
}

// GetFlow returns the visitor's flow state
func (h *AuthHandler) GetFlow(c echo.Context) error {
	state, err := h.authUC.Flow(c.Request().Context(), visitorID(c))
	if err != nil {
		logger.Error("Failed to load flow",
			logger.String("visitor_id", visitorID(c)),
			logger.Err(err))
		return utils.InternalServerErrorResponse(c, "Failed to load sign-in state")
	}
	return utils.SuccessResponse(c, http.StatusOK, state.Notice, state)
}

// SignIn handles credential submission
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.Credentials
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}

	state, err := h.authUC.SignIn(c.Request().Context(), visitorID(c), req)
	return flowResponse(c, "SignIn", state, err)
}

// SignUp handles account creation
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req models.SignupCredentials
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}

	state, err := h.authUC.SignUp(c.Request().Context(), visitorID(c), req)
	return flowResponse(c, "SignUp", state, err)
}

// GoogleSignIn handles a Google ID token
func (h *AuthHandler) GoogleSignIn(c echo.Context) error {
	var req googleRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}

	state, err := h.authUC.GoogleSignIn(c.Request().Context(), visitorID(c), req.Credential)
	return flowResponse(c, "GoogleSignIn", state, err)
}

// VerifyOTP handles the one-time code
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req otpRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}

	state, err := h.authUC.VerifyOTP(c.Request().Context(), visitorID(c), req.OTPCode)
	return flowResponse(c, "VerifyOTP", state, err)
}

// ResendOTP asks for a fresh code
func (h *AuthHandler) ResendOTP(c echo.Context) error {
	state, err := h.authUC.ResendOTP(c.Request().Context(), visitorID(c))
	return flowResponse(c, "ResendOTP", state, err)
}

// BackToLogin abandons the OTP challenge
func (h *AuthHandler) BackToLogin(c echo.Context) error {
	state, err := h.authUC.BackToLogin(c.Request().Context(), visitorID(c))
	return flowResponse(c, "BackToLogin", state, err)
}

// GetSession returns the visitor's session, refreshed when ?refresh=true
func (h *AuthHandler) GetSession(c echo.Context) error {
	refresh := c.QueryParam("refresh") == "true"

	session, err := h.authUC.Session(c.Request().Context(), visitorID(c), refresh)
	if err != nil {
		logger.Error("Failed to load session",
			logger.String("visitor_id", visitorID(c)),
			logger.Err(err))
		return utils.InternalServerErrorResponse(c, "Failed to load session")
	}
	return utils.SuccessResponse(c, http.StatusOK, "", session)
}

// Logout ends the visitor's session
func (h *AuthHandler) Logout(c echo.Context) error {
	session, err := h.authUC.Logout(c.Request().Context(), visitorID(c))
	if err == nil {
		return utils.SuccessResponse(c, http.StatusOK, "Logged out", session)
	}

	var logoutErr *auth.LogoutError
	if errors.As(err, &logoutErr) {
		return utils.BadGatewayResponse(c, auth.UserMessage(err), logoutFailure{
			Retryable: logoutErr.Retryable(),
			Session:   session,
		})
	}
	if errors.Is(err, auth.ErrVisitorBusy) {
		return utils.ConflictResponse(c, auth.UserMessage(err))
	}

	logger.Error("Logout failed",
		logger.String("visitor_id", visitorID(c)),
		logger.Err(err))
	return utils.InternalServerErrorResponse(c, "Logout failed")
}

// flowResponse renders a flow state, mapping err to a status code
func flowResponse(c echo.Context, endpoint string, state models.FlowState, err error) error {
	if err == nil {
		return utils.SuccessResponse(c, http.StatusOK, state.Notice, state)
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Sign-in step failed",
			logger.String("endpoint", endpoint),
			logger.String("visitor_id", visitorID(c)),
			logger.Err(err))
	} else {
		logger.Warn("Sign-in step rejected",
			logger.String("endpoint", endpoint),
			logger.String("visitor_id", visitorID(c)),
			logger.Err(err))
	}

	if state.Phase == "" {
		return utils.ErrorResponseHandler(c, status, auth.UserMessage(err))
	}
	return utils.ErrorResponseWithData(c, status, auth.UserMessage(err), state)
}

func statusFor(err error) int {
	var (
		validationErr *auth.ValidationError
		transportErr  *auth.TransportError
		networkErr    *auth.NetworkError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &transportErr):
		if transportErr.StatusCode >= 400 && transportErr.StatusCode < 500 {
			return transportErr.StatusCode
		}
		return http.StatusBadGateway
	case errors.As(err, &networkErr):
		return http.StatusBadGateway
	case errors.Is(err, auth.ErrSubmissionInFlight),
		errors.Is(err, auth.ErrVisitorBusy),
		errors.Is(err, auth.ErrInvalidTransition),
		errors.Is(err, auth.ErrFlowFinished):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
