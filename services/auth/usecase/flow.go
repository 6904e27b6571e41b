package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/piresc/authgate/internal/pkg/constants"
	"github.com/piresc/authgate/internal/pkg/logger"
	"github.com/piresc/authgate/internal/pkg/models"
	"github.com/piresc/authgate/services/auth"
)

// Sign-in methods recorded on auth events
const (
	MethodPassword = "password"
	MethodSignup   = "signup"
	MethodGoogle   = "google"
	MethodOTP      = "otp"
)

// FlowOptions configures a FlowController
type FlowOptions struct {
	// LandingPath is where views navigate once the flow finishes
	LandingPath    string
	GoogleClientID string
	VisitorID      string
	Events         auth.EventPublisher
	// Initial restores a previously saved state
	Initial *models.FlowState
}

// FlowController sequences credential submission, the OTP challenge and
// session finalization. It is safe for concurrent use; the lock is never
// held across a backend call.
type FlowController struct {
	mu        sync.Mutex
	state     models.FlowState
	resending bool
	method    string

	transport auth.Transport
	session   auth.SessionRefresher
	google    *GoogleCredentialChecker
	events    auth.EventPublisher
	landing   string
	visitorID string
}

// NewFlowController creates a controller in collecting-credentials, or in
// the restored state from opts.Initial.
func NewFlowController(transport auth.Transport, session auth.SessionRefresher, opts FlowOptions) *FlowController {
	landing := opts.LandingPath
	if landing == "" {
		landing = "/"
	}

	f := &FlowController{
		state:     models.FlowState{Phase: models.PhaseCollectingCredentials},
		transport: transport,
		session:   session,
		google:    NewGoogleCredentialChecker(opts.GoogleClientID),
		events:    opts.Events,
		landing:   landing,
		visitorID: opts.VisitorID,
	}
	if opts.Initial != nil {
		f.state = restoreState(*opts.Initial)
	}
	return f
}

// State returns a copy of the current flow state
func (f *FlowController) State() models.FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyState(f.state)
}

// SubmitCredentials signs in with username and password
func (f *FlowController) SubmitCredentials(ctx context.Context, creds models.Credentials) (models.FlowState, error) {
	if err := f.beginSubmit(MethodPassword, func() error {
		return ValidateCredentials(creds.Username, creds.Password)
	}); err != nil {
		return f.State(), err
	}

	f.mu.Lock()
	f.state.RememberMe = creds.RememberMe
	f.mu.Unlock()

	result, err := f.transport.Login(ctx, creds)
	return f.completeSubmit(ctx, MethodPassword, creds.Username, result, err)
}

// SubmitSignup creates an account and continues like a sign-in
func (f *FlowController) SubmitSignup(ctx context.Context, creds models.SignupCredentials) (models.FlowState, error) {
	if err := f.beginSubmit(MethodSignup, func() error {
		return ValidateSignup(creds.Name, creds.Email, creds.Password, creds.AgreedToTerms)
	}); err != nil {
		return f.State(), err
	}

	result, err := f.transport.Signup(ctx, creds)
	return f.completeSubmit(ctx, MethodSignup, creds.Name, result, err)
}

// SubmitGoogle signs in with a Google ID token
func (f *FlowController) SubmitGoogle(ctx context.Context, credential string) (models.FlowState, error) {
	var email string
	if err := f.beginSubmit(MethodGoogle, func() error {
		var err error
		email, err = f.google.Check(credential)
		return err
	}); err != nil {
		return f.State(), err
	}

	result, err := f.transport.GoogleLogin(ctx, credential)
	return f.completeSubmit(ctx, MethodGoogle, email, result, err)
}

// SubmitOTP verifies the code for the pending challenge
func (f *FlowController) SubmitOTP(ctx context.Context, code string) (models.FlowState, error) {
	f.mu.Lock()
	if err := f.checkPhase(models.PhaseCollectingOTP); err != nil {
		f.mu.Unlock()
		return f.State(), err
	}

	f.state.Error = ""
	f.state.Notice = ""
	normalized, err := NormalizeOTPCode(code)
	if err != nil {
		f.state.Error = auth.UserMessage(err)
		f.mu.Unlock()
		return f.State(), err
	}

	f.state.Challenge.Code = normalized
	f.state.Phase = models.PhaseSubmittingOTP
	challenge := *f.state.Challenge
	f.mu.Unlock()

	verified, err := f.transport.VerifyOTP(ctx, challenge)
	if err != nil {
		f.mu.Lock()
		f.state.Phase = models.PhaseCollectingOTP
		f.state.Challenge.Code = ""
		f.state.Error = auth.UserMessage(err)
		f.mu.Unlock()

		f.publish(ctx, constants.EventLoginFailed, MethodOTP, "", challenge.UserID, auth.UserMessage(err))
		return f.State(), err
	}

	f.finalize(ctx, constants.NoticeLoginSuccess)
	f.publish(ctx, constants.EventLoginSucceeded, f.submittedMethod(), verified.Username, challenge.UserID, "")
	return f.State(), nil
}

// ResendOTP asks the backend for a fresh code. The phase never changes.
func (f *FlowController) ResendOTP(ctx context.Context) (models.FlowState, error) {
	f.mu.Lock()
	if err := f.checkPhase(models.PhaseCollectingOTP); err != nil {
		f.mu.Unlock()
		return f.State(), err
	}
	f.state.Error = ""
	f.state.Notice = ""
	f.resending = true
	userID := f.state.Challenge.UserID
	f.mu.Unlock()

	_, err := f.transport.ResendOTP(ctx, userID)

	f.mu.Lock()
	f.resending = false
	if err != nil {
		f.state.Error = auth.UserMessage(err)
	} else {
		f.state.Notice = constants.NoticeOTPResent
	}
	f.mu.Unlock()

	if err == nil {
		f.publish(ctx, constants.EventOTPRequested, MethodOTP, "", userID, "resend")
	}
	return f.State(), err
}

// BackToLogin abandons the OTP challenge
func (f *FlowController) BackToLogin() (models.FlowState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkPhase(models.PhaseCollectingOTP); err != nil {
		return copyState(f.state), err
	}

	f.state.Phase = models.PhaseCollectingCredentials
	f.state.Challenge = nil
	f.state.Error = ""
	f.state.Notice = ""
	return copyState(f.state), nil
}

// beginSubmit validates and moves collecting-credentials to submitting
func (f *FlowController) beginSubmit(method string, validate func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkPhase(models.PhaseCollectingCredentials); err != nil {
		return err
	}

	f.state.Error = ""
	f.state.Notice = ""
	if err := validate(); err != nil {
		f.state.Error = auth.UserMessage(err)
		return err
	}

	f.state.Phase = models.PhaseSubmitting
	f.method = method
	return nil
}

// completeSubmit branches on the backend's answer to a submission
func (f *FlowController) completeSubmit(ctx context.Context, method, subject string, result models.LoginResult, err error) (models.FlowState, error) {
	if err == nil && result == nil {
		err = fmt.Errorf("%s: empty login result", method)
	}
	if err != nil {
		f.mu.Lock()
		f.state.Phase = models.PhaseCollectingCredentials
		f.state.Error = auth.UserMessage(err)
		f.mu.Unlock()

		f.publish(ctx, constants.EventLoginFailed, method, subject, 0, auth.UserMessage(err))
		return f.State(), err
	}

	switch r := result.(type) {
	case models.OTPRequired:
		f.mu.Lock()
		f.state.Phase = models.PhaseCollectingOTP
		f.state.Challenge = &models.OTPChallenge{UserID: r.UserID}
		f.state.Notice = constants.NoticeOTPSent
		f.mu.Unlock()

		f.publish(ctx, constants.EventOTPRequested, method, subject, r.UserID, "")
	case models.Authenticated:
		f.finalize(ctx, "")

		username := r.Username
		if username == "" {
			username = subject
		}
		f.publish(ctx, successEvent(method), method, username, 0, "")
	}

	return f.State(), nil
}

// finalize enters the terminal phase and refreshes the session
func (f *FlowController) finalize(ctx context.Context, notice string) {
	f.mu.Lock()
	f.state.Phase = models.PhaseFinalizing
	f.state.Challenge = nil
	f.state.Error = ""
	f.state.Notice = notice
	f.state.Redirect = f.landing
	f.mu.Unlock()

	if f.session != nil {
		f.session.CheckAuth(ctx)
	}
}

// checkPhase reports why an operation expecting want cannot run. Callers hold f.mu.
func (f *FlowController) checkPhase(want models.Phase) error {
	switch {
	case f.state.Phase == models.PhaseFinalizing:
		return auth.ErrFlowFinished
	case f.state.Phase.InFlight() || f.resending:
		return auth.ErrSubmissionInFlight
	case f.state.Phase != want:
		return auth.ErrInvalidTransition
	}
	return nil
}

func (f *FlowController) submittedMethod() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.method == "" {
		return MethodOTP
	}
	return f.method
}

func (f *FlowController) publish(ctx context.Context, eventType, method, username string, userID int64, reason string) {
	if f.events == nil {
		return
	}

	event := &models.AuthEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		VisitorID:  f.visitorID,
		Method:     method,
		Username:   username,
		UserID:     userID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
	if err := f.events.PublishAuthEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish auth event",
			logger.String("event_type", eventType),
			logger.Err(err))
	}
}

func successEvent(method string) string {
	if method == MethodSignup {
		return constants.EventSignupSucceeded
	}
	return constants.EventLoginSucceeded
}

// restoreState repairs a saved state so the challenge invariant holds
func restoreState(in models.FlowState) models.FlowState {
	out := copyState(in)

	switch out.Phase {
	case models.PhaseSubmitting:
		out.Phase = models.PhaseCollectingCredentials
	case models.PhaseSubmittingOTP:
		out.Phase = models.PhaseCollectingOTP
	case models.PhaseCollectingCredentials, models.PhaseCollectingOTP, models.PhaseFinalizing:
	default:
		out.Phase = models.PhaseCollectingCredentials
	}

	if out.Phase.AwaitingOTP() {
		if out.Challenge == nil || out.Challenge.UserID == 0 {
			out.Phase = models.PhaseCollectingCredentials
			out.Challenge = nil
		} else {
			out.Challenge.Code = ""
		}
	} else {
		out.Challenge = nil
	}

	return out
}

func copyState(in models.FlowState) models.FlowState {
	out := in
	if in.Challenge != nil {
		c := *in.Challenge
		out.Challenge = &c
	}
	return out
}
