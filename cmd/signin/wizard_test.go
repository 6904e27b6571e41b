package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/piresc/authgate/internal/pkg/models"
	"github.com/piresc/authgate/services/auth"
	"github.com/piresc/authgate/services/auth/mocks"
	"github.com/piresc/authgate/services/auth/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWizard(t *testing.T, input string) (*wizard, *mocks.MockTransport, *usecase.SessionContext, *bytes.Buffer) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	transport := mocks.NewMockTransport(ctrl)
	session := usecase.NewSessionContext(transport, nil)
	flow := usecase.NewFlowController(transport, session, usecase.FlowOptions{})
	out := &bytes.Buffer{}
	return newWizard(flow, strings.NewReader(input), out), transport, session, out
}

func expectSignedIn(transport *mocks.MockTransport, username string) {
	transport.EXPECT().CheckSession(gomock.Any()).Return(models.SessionStatus{IsAuthenticated: true}, nil)
	transport.EXPECT().Whoami(gomock.Any()).Return(models.Identity{Username: username}, nil)
}

func TestWizard_CredentialsThenOTP(t *testing.T) {
	w, transport, session, out := newTestWizard(t, "alice\nsecret123\ny\n123\nr\n482913\n")

	transport.EXPECT().
		Login(gomock.Any(), models.Credentials{Username: "alice", Password: "secret123", RememberMe: true}).
		Return(models.OTPRequired{UserID: 42}, nil)
	transport.EXPECT().ResendOTP(gomock.Any(), int64(42)).Return(models.OTPResent{}, nil)
	transport.EXPECT().VerifyOTP(gomock.Any(), models.OTPChallenge{UserID: 42, Code: "482913"}).
		Return(models.OTPVerified{Username: "alice"}, nil)
	expectSignedIn(transport, "alice")

	require.NoError(t, w.run(context.Background(), w.credentials, true))

	text := out.String()
	assert.Contains(t, text, "OTP sent to your email!")
	assert.Contains(t, text, "! OTP code must be 6 digits")
	assert.Contains(t, text, "OTP resent to your email!")
	assert.Contains(t, text, "Login successful!")
	assert.True(t, session.Snapshot().IsAuthenticated)
	assert.Equal(t, models.PhaseFinalizing, w.flow.State().Phase)
}

func TestWizard_BackReturnsToCredentials(t *testing.T) {
	w, transport, _, _ := newTestWizard(t, "alice\nsecret123\n\nb\nbob\nhunter222\nn\n")

	transport.EXPECT().Login(gomock.Any(), gomock.Any()).Return(models.OTPRequired{UserID: 42}, nil)
	transport.EXPECT().
		Login(gomock.Any(), models.Credentials{Username: "bob", Password: "hunter222"}).
		Return(models.Authenticated{Username: "bob"}, nil)
	expectSignedIn(transport, "bob")

	require.NoError(t, w.run(context.Background(), w.credentials, true))
	assert.Equal(t, models.PhaseFinalizing, w.flow.State().Phase)
}

func TestWizard_RetriesRejectedCredentials(t *testing.T) {
	w, transport, _, out := newTestWizard(t, "alice\nwrong\n\nalice\nsecret123\n\n")

	transport.EXPECT().Login(gomock.Any(), gomock.Any()).
		Return(nil, &auth.TransportError{Op: "login", StatusCode: 401, Message: "Invalid credentials"})
	transport.EXPECT().Login(gomock.Any(), gomock.Any()).Return(models.Authenticated{Username: "alice"}, nil)
	expectSignedIn(transport, "alice")

	require.NoError(t, w.run(context.Background(), w.credentials, true))
	assert.Contains(t, out.String(), "! Invalid credentials")
}

func TestWizard_EndOfInputAborts(t *testing.T) {
	w, _, _, _ := newTestWizard(t, "alice\n")

	err := w.run(context.Background(), w.credentials, true)
	assert.ErrorIs(t, err, errAborted)
}

func TestWizard_GoogleDoesNotRetry(t *testing.T) {
	w, _, _, out := newTestWizard(t, "")

	err := w.run(context.Background(), w.google("not-a-jwt"), false)

	require.Error(t, err)
	assert.Contains(t, out.String(), "! Google credential is malformed")
}

func TestWizard_Signup(t *testing.T) {
	w, transport, _, _ := newTestWizard(t, "Carol\ncarol@example.com\nlongenough\nyes\n")

	transport.EXPECT().
		Signup(gomock.Any(), models.SignupCredentials{
			Name: "Carol", Email: "carol@example.com", Password: "longenough", AgreedToTerms: true,
		}).
		Return(models.Authenticated{Username: "Carol"}, nil)
	expectSignedIn(transport, "Carol")

	require.NoError(t, w.run(context.Background(), w.signup, true))
}

func TestWizard_PrintSession(t *testing.T) {
	w, _, _, out := newTestWizard(t, "")

	w.printSession(models.Session{IsAuthenticated: true, User: &models.User{Username: "alice"}})
	w.printSession(models.Session{})

	assert.Equal(t, "Signed in as alice\nNot signed in\n", out.String())
}

func TestWizard_PasswordIsNotEchoed(t *testing.T) {
	w, transport, _, out := newTestWizard(t, "alice\n\n")
	w.readSecret = func() ([]byte, error) { return []byte("secret123"), nil }

	transport.EXPECT().
		Login(gomock.Any(), models.Credentials{Username: "alice", Password: "secret123"}).
		Return(models.Authenticated{Username: "alice"}, nil)
	expectSignedIn(transport, "alice")

	require.NoError(t, w.run(context.Background(), w.credentials, true))
	assert.Contains(t, out.String(), "Password: \n")
	assert.NotContains(t, out.String(), "secret123")
}

func TestWizard_SecretReadFailureAborts(t *testing.T) {
	w, _, _, _ := newTestWizard(t, "alice\n")
	w.readSecret = func() ([]byte, error) { return nil, io.EOF }

	err := w.run(context.Background(), w.credentials, true)
	assert.ErrorIs(t, err, errAborted)
}
