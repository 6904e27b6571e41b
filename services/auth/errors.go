package auth

import (
	"errors"
	"fmt"

	"github.com/piresc/authgate/internal/pkg/constants"
)

var (
	// ErrSubmissionInFlight is returned while a submission for the flow is outstanding
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	// ErrInvalidTransition is returned when an operation is not allowed in the current phase
	ErrInvalidTransition = errors.New("operation not allowed in the current phase")
	// ErrFlowFinished is returned for any operation once the flow reached finalizing
	ErrFlowFinished = errors.New("sign-in flow already finished")
	// ErrVisitorBusy is returned when another request holds the visitor's lock
	ErrVisitorBusy = errors.New("another request for this visitor is in progress")
)

// TransportError is a non-2xx answer from the auth backend
type TransportError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Message)
}

// NetworkError means the request to the auth backend never completed
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError is raised before any network call
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// LogoutError wraps a failed logout. The session is left as it was.
type LogoutError struct {
	Err error
}

func (e *LogoutError) Error() string {
	return fmt.Sprintf("logout failed: %v", e.Err)
}

func (e *LogoutError) Unwrap() error {
	return e.Err
}

// Retryable reports that the caller may offer the logout again
func (e *LogoutError) Retryable() bool {
	return true
}

// UserMessage returns the inline message a view shows for err
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Message
	}

	var networkErr *NetworkError
	if errors.As(err, &networkErr) {
		return constants.NoticeNetworkError
	}

	switch {
	case errors.Is(err, ErrSubmissionInFlight):
		return "Please wait for the current request to finish"
	case errors.Is(err, ErrVisitorBusy):
		return "Please wait for the current request to finish"
	case errors.Is(err, ErrFlowFinished):
		return "You are already signed in"
	case errors.Is(err, ErrInvalidTransition):
		return "That action is not available right now"
	}

	var logoutErr *LogoutError
	if errors.As(err, &logoutErr) {
		return "Logout failed"
	}

	return "Something went wrong. Please try again."
}
