package models

import "time"

// Phase is the position of a sign-in flow in its state machine
type Phase string

const (
	PhaseCollectingCredentials Phase = "collecting-credentials"
	PhaseSubmitting            Phase = "submitting"
	PhaseCollectingOTP         Phase = "collecting-otp"
	PhaseSubmittingOTP         Phase = "submitting-otp"
	PhaseFinalizing            Phase = "finalizing"
)

// AwaitingOTP reports whether the phase carries an OTP challenge
func (p Phase) AwaitingOTP() bool {
	return p == PhaseCollectingOTP || p == PhaseSubmittingOTP
}

// InFlight reports whether a backend submission is outstanding
func (p Phase) InFlight() bool {
	return p == PhaseSubmitting || p == PhaseSubmittingOTP
}

// Credentials are the sign-in form values. RememberMe never leaves the client.
type Credentials struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// SignupCredentials are the sign-up form values
type SignupCredentials struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	AgreedToTerms bool   `json:"agreed"`
}

// OTPChallenge is the pending second factor for a user
type OTPChallenge struct {
	UserID int64  `json:"userId"`
	Code   string `json:"otpCode,omitempty"`
}

// User is the authenticated principal as the backend names it
type User struct {
	Username string `json:"username"`
}

// Session is the locally cached view of the backend session
type Session struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"isAuthenticated"`
	IsLoading       bool  `json:"isLoading"`
}

// FlowState is everything a view needs to render the sign-in flow.
// Challenge is non-nil only while Phase.AwaitingOTP().
type FlowState struct {
	Phase      Phase         `json:"phase"`
	Challenge  *OTPChallenge `json:"challenge,omitempty"`
	Error      string        `json:"error,omitempty"`
	Notice     string        `json:"notice,omitempty"`
	Redirect   string        `json:"redirect,omitempty"`
	RememberMe bool          `json:"rememberMe,omitempty"`
}

// LoginResult is the outcome of a credential, signup or Google submission.
// It is implemented by Authenticated and OTPRequired only.
type LoginResult interface {
	isLoginResult()
}

// Authenticated means the backend established a session without a second factor
type Authenticated struct {
	Username string
}

// OTPRequired means the backend sent a one-time code to the user
type OTPRequired struct {
	UserID int64
}

func (Authenticated) isLoginResult() {}
func (OTPRequired) isLoginResult()   {}

// SessionStatus is the /session/ answer
type SessionStatus struct {
	IsAuthenticated bool
}

// Identity is the /whoami/ answer. Username is empty for anonymous callers.
type Identity struct {
	Username string
}

// OTPVerified is a successful /verify-otp/ answer
type OTPVerified struct {
	Username string
	Detail   string
}

// OTPResent is a successful /resend-otp/ answer
type OTPResent struct {
	Detail string
}

// AuthEvent is published whenever the flow reaches a notable outcome
type AuthEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	VisitorID  string    `json:"visitor_id,omitempty"`
	Method     string    `json:"method,omitempty"` // password, signup, google, otp
	Username   string    `json:"username,omitempty"`
	UserID     int64     `json:"user_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
