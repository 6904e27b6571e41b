package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/piresc/authgate/internal/pkg/models"
	"github.com/piresc/authgate/services/auth"
	"github.com/piresc/authgate/services/auth/usecase"
)

// errAborted means input ended before the flow finished
var errAborted = errors.New("sign-in aborted")

// collectFunc prompts for the first step and submits it
type collectFunc func(ctx context.Context) (models.FlowState, error)

type wizard struct {
	flow *usecase.FlowController
	in   *bufio.Scanner
	out  io.Writer
	// readSecret reads a line without echo. nil reads from in like any prompt.
	readSecret func() ([]byte, error)
}

func newWizard(flow *usecase.FlowController, in io.Reader, out io.Writer) *wizard {
	return &wizard{
		flow: flow,
		in:   bufio.NewScanner(in),
		out:  out,
	}
}

// run drives the flow until it finishes. retry re-prompts the first step
// after a rejected submission.
func (w *wizard) run(ctx context.Context, collect collectFunc, retry bool) error {
	for {
		state, err := collect(ctx)
		if errors.Is(err, errAborted) {
			return err
		}
		if err != nil {
			w.show(state)
			if !retry {
				return err
			}
			continue
		}
		w.show(state)

		switch state.Phase {
		case models.PhaseFinalizing:
			return nil
		case models.PhaseCollectingOTP:
			done, err := w.otp(ctx)
			if err != nil || done {
				return err
			}
			if !retry {
				return errAborted
			}
		}
	}
}

// otp reads codes until the flow finishes or the user goes back
func (w *wizard) otp(ctx context.Context) (bool, error) {
	fmt.Fprintln(w.out, "Enter the 6-digit code, 'r' to resend, 'b' to go back.")
	for {
		input, err := w.prompt("OTP")
		if err != nil {
			return false, err
		}

		var state models.FlowState
		switch strings.ToLower(strings.TrimSpace(input)) {
		case "r":
			state, err = w.flow.ResendOTP(ctx)
		case "b":
			state, err = w.flow.BackToLogin()
			if err == nil {
				return false, nil
			}
		default:
			state, err = w.flow.SubmitOTP(ctx, input)
		}
		w.show(state)

		if err == nil && state.Phase == models.PhaseFinalizing {
			return true, nil
		}
		if errors.Is(err, auth.ErrFlowFinished) {
			return true, nil
		}
	}
}

func (w *wizard) credentials(ctx context.Context) (models.FlowState, error) {
	username, err := w.prompt("Username")
	if err != nil {
		return models.FlowState{}, err
	}
	password, err := w.secret("Password")
	if err != nil {
		return models.FlowState{}, err
	}
	remember, err := w.prompt("Remember me? [y/N]")
	if err != nil {
		return models.FlowState{}, err
	}

	return w.flow.SubmitCredentials(ctx, models.Credentials{
		Username:   username,
		Password:   password,
		RememberMe: yes(remember),
	})
}

func (w *wizard) signup(ctx context.Context) (models.FlowState, error) {
	name, err := w.prompt("Name")
	if err != nil {
		return models.FlowState{}, err
	}
	email, err := w.prompt("Email")
	if err != nil {
		return models.FlowState{}, err
	}
	password, err := w.secret("Password")
	if err != nil {
		return models.FlowState{}, err
	}
	agreed, err := w.prompt("Agree to the Terms and Conditions? [y/N]")
	if err != nil {
		return models.FlowState{}, err
	}

	return w.flow.SubmitSignup(ctx, models.SignupCredentials{
		Name:          name,
		Email:         email,
		Password:      password,
		AgreedToTerms: yes(agreed),
	})
}

func (w *wizard) google(credential string) collectFunc {
	return func(ctx context.Context) (models.FlowState, error) {
		return w.flow.SubmitGoogle(ctx, credential)
	}
}

func (w *wizard) prompt(label string) (string, error) {
	fmt.Fprintf(w.out, "%s: ", label)
	if !w.in.Scan() {
		fmt.Fprintln(w.out)
		return "", errAborted
	}
	return strings.TrimRight(w.in.Text(), "\r"), nil
}

func (w *wizard) secret(label string) (string, error) {
	if w.readSecret == nil {
		return w.prompt(label)
	}
	fmt.Fprintf(w.out, "%s: ", label)
	value, err := w.readSecret()
	fmt.Fprintln(w.out)
	if err != nil {
		return "", errAborted
	}
	return string(value), nil
}

func (w *wizard) show(state models.FlowState) {
	if state.Error != "" {
		fmt.Fprintf(w.out, "! %s\n", state.Error)
	}
	if state.Notice != "" {
		fmt.Fprintf(w.out, "%s\n", state.Notice)
	}
}

func (w *wizard) printSession(sess models.Session) {
	if sess.IsAuthenticated && sess.User != nil {
		fmt.Fprintf(w.out, "Signed in as %s\n", sess.User.Username)
		return
	}
	fmt.Fprintln(w.out, "Not signed in")
}

func yes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}
