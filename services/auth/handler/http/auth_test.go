package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/piresc/authgate/internal/pkg/constants"
	"github.com/piresc/authgate/internal/pkg/models"
	"github.com/piresc/authgate/services/auth"
	"github.com/piresc/authgate/services/auth/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVisitor = "0b8f7a52-3d4c-4a56-9d1e-6f1c2e3a4b5c"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func newContext(method, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(constants.VisitorIDKey, testVisitor)
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestNewAuthHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuthUC := mocks.NewMockAuthUC(ctrl)
	handler := NewAuthHandler(mockAuthUC)

	assert.NotNil(t, handler)
	assert.Equal(t, mockAuthUC, handler.authUC)
}

func TestAuthHandler_SignIn_OTPRequired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuthUC := mocks.NewMockAuthUC(ctrl)
	handler := NewAuthHandler(mockAuthUC)

	mockAuthUC.EXPECT().
		SignIn(gomock.Any(), testVisitor, models.Credentials{Username: "alice", Password: "secret123", RememberMe: true}).
		Return(models.FlowState{
			Phase:     models.PhaseCollectingOTP,
			Challenge: &models.OTPChallenge{UserID: 42},
			Notice:    constants.NoticeOTPSent,
		}, nil)

	c, rec := newContext(http.MethodPost, `{"username":"alice","password":"secret123","rememberMe":true}`)
	require.NoError(t, handler.SignIn(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, constants.NoticeOTPSent, env.Message)

	var state models.FlowState
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Equal(t, models.PhaseCollectingOTP, state.Phase)
	assert.Equal(t, int64(42), state.Challenge.UserID)
}

func TestAuthHandler_SignIn_InvalidPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewAuthHandler(mocks.NewMockAuthUC(ctrl))

	c, rec := newContext(http.MethodPost, `{"username":`)
	require.NoError(t, handler.SignIn(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request payload", decode(t, rec).Error)
}

func TestAuthHandler_FlowErrors(t *testing.T) {
	collecting := models.FlowState{Phase: models.PhaseCollectingCredentials}

	tests := []struct {
		name       string
		err        error
		state      models.FlowState
		wantStatus int
		wantError  string
		wantData   bool
	}{
		{
			name:       "validation",
			err:        &auth.ValidationError{Field: "username", Message: "Please fill in all fields"},
			state:      collecting,
			wantStatus: http.StatusBadRequest,
			wantError:  "Please fill in all fields",
			wantData:   true,
		},
		{
			name:       "backend rejects credentials",
			err:        &auth.TransportError{Op: "login", StatusCode: 401, Message: "Invalid credentials"},
			state:      collecting,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid credentials",
			wantData:   true,
		},
		{
			name:       "backend server error",
			err:        &auth.TransportError{Op: "login", StatusCode: 503, Message: "Login failed"},
			state:      collecting,
			wantStatus: http.StatusBadGateway,
			wantError:  "Login failed",
			wantData:   true,
		},
		{
			name:       "network",
			err:        &auth.NetworkError{Op: "login", Err: errors.New("dial tcp: refused")},
			state:      collecting,
			wantStatus: http.StatusBadGateway,
			wantError:  constants.NoticeNetworkError,
			wantData:   true,
		},
		{
			name:       "visitor busy",
			err:        auth.ErrVisitorBusy,
			wantStatus: http.StatusConflict,
			wantError:  "Please wait for the current request to finish",
		},
		{
			name:       "finished",
			err:        auth.ErrFlowFinished,
			state:      models.FlowState{Phase: models.PhaseFinalizing},
			wantStatus: http.StatusConflict,
			wantError:  "You are already signed in",
			wantData:   true,
		},
		{
			name:       "repository failure",
			err:        errors.New("redis: connection pool timeout"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Something went wrong. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockAuthUC := mocks.NewMockAuthUC(ctrl)
			handler := NewAuthHandler(mockAuthUC)
			mockAuthUC.EXPECT().SignIn(gomock.Any(), testVisitor, gomock.Any()).Return(tt.state, tt.err)

			c, rec := newContext(http.MethodPost, `{"username":"alice","password":"x"}`)
			require.NoError(t, handler.SignIn(c))

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantError, env.Error)
			assert.Equal(t, tt.wantStatus, env.Code)
			if tt.wantData {
				var state models.FlowState
				require.NoError(t, json.Unmarshal(env.Data, &state))
				assert.Equal(t, tt.state.Phase, state.Phase)
			} else {
				assert.Empty(t, env.Data)
			}
		})
	}
}

func TestAuthHandler_VerifyOTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuthUC := mocks.NewMockAuthUC(ctrl)
	handler := NewAuthHandler(mockAuthUC)

	mockAuthUC.EXPECT().VerifyOTP(gomock.Any(), testVisitor, "482913").
		Return(models.FlowState{Phase: models.PhaseFinalizing, Redirect: "/", Notice: constants.NoticeLoginSuccess}, nil)

	c, rec := newContext(http.MethodPost, `{"otpCode":"482913"}`)
	require.NoError(t, handler.VerifyOTP(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, constants.NoticeLoginSuccess, env.Message)

	var state models.FlowState
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Equal(t, "/", state.Redirect)
}

func TestAuthHandler_SignUpAndGoogle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuthUC := mocks.NewMockAuthUC(ctrl)
	handler := NewAuthHandler(mockAuthUC)

	mockAuthUC.EXPECT().
		SignUp(gomock.Any(), testVisitor, models.SignupCredentials{
			Name: "carol", Email: "carol@example.com", Password: "longenough", AgreedToTerms: true,
		}).
		Return(models.FlowState{Phase: models.PhaseCollectingOTP, Challenge: &models.OTPChallenge{UserID: 5}}, nil)
	mockAuthUC.EXPECT().GoogleSignIn(gomock.Any(), testVisitor, "id-token").
		Return(models.FlowState{Phase: models.PhaseFinalizing, Redirect: "/"}, nil)

	c, rec := newContext(http.MethodPost, `{"name":"carol","email":"carol@example.com","password":"longenough","agreed":true}`)
	require.NoError(t, handler.SignUp(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newContext(http.MethodPost, `{"credential":"id-token"}`)
	require.NoError(t, handler.GoogleSignIn(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_ResendAndBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuthUC := mocks.NewMockAuthUC(ctrl)
	handler := NewAuthHandler(mockAuthUC)

	mockAuthUC.EXPECT().ResendOTP(gomock.Any(), testVisitor).
		Return(models.FlowState{Phase: models.PhaseCollectingOTP, Challenge: &models.OTPChallenge{UserID: 42}, Notice: constants.NoticeOTPResent}, nil)
	mockAuthUC.EXPECT().BackToLogin(gomock.Any(), testVisitor).
		Return(models.FlowState{Phase: models.PhaseCollectingCredentials}, nil)

	c, rec := newContext(http.MethodPost, "")
	require.NoError(t, handler.ResendOTP(c))
	assert.Equal(t, constants.NoticeOTPResent, decode(t, rec).Message)

	c, rec = newContext(http.MethodPost, "")
	require.NoError(t, handler.BackToLogin(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_GetFlow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuthUC := mocks.NewMockAuthUC(ctrl)
	handler := NewAuthHandler(mockAuthUC)

	mockAuthUC.EXPECT().Flow(gomock.Any(), testVisitor).
		Return(models.FlowState{Phase: models.PhaseCollectingCredentials}, nil)
	c, rec := newContext(http.MethodGet, "")
	require.NoError(t, handler.GetFlow(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	mockAuthUC.EXPECT().Flow(gomock.Any(), testVisitor).Return(models.FlowState{}, assert.AnError)
	c, rec = newContext(http.MethodGet, "")
	require.NoError(t, handler.GetFlow(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuthHandler_GetSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuthUC := mocks.NewMockAuthUC(ctrl)
	handler := NewAuthHandler(mockAuthUC)

	session := models.Session{IsAuthenticated: true, User: &models.User{Username: "alice"}}
	mockAuthUC.EXPECT().Session(gomock.Any(), testVisitor, false).Return(session, nil)
	mockAuthUC.EXPECT().Session(gomock.Any(), testVisitor, true).Return(models.Session{}, nil)

	c, rec := newContext(http.MethodGet, "")
	require.NoError(t, handler.GetSession(c))
	var got models.Session
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &got))
	assert.Equal(t, session, got)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?refresh=true", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(constants.VisitorIDKey, testVisitor)
	require.NoError(t, handler.GetSession(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	signedIn := models.Session{IsAuthenticated: true, User: &models.User{Username: "alice"}}

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockAuthUC := mocks.NewMockAuthUC(ctrl)
		handler := NewAuthHandler(mockAuthUC)
		mockAuthUC.EXPECT().Logout(gomock.Any(), testVisitor).Return(models.Session{}, nil)

		c, rec := newContext(http.MethodPost, "")
		require.NoError(t, handler.Logout(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Logged out", decode(t, rec).Message)
	})

	t.Run("backend failure is retryable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockAuthUC := mocks.NewMockAuthUC(ctrl)
		handler := NewAuthHandler(mockAuthUC)
		mockAuthUC.EXPECT().Logout(gomock.Any(), testVisitor).
			Return(signedIn, &auth.LogoutError{Err: &auth.TransportError{Op: "logout", StatusCode: 500, Message: "Logout failed"}})

		c, rec := newContext(http.MethodPost, "")
		require.NoError(t, handler.Logout(c))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		env := decode(t, rec)
		assert.Equal(t, "Logout failed", env.Error)

		var failure logoutFailure
		require.NoError(t, json.Unmarshal(env.Data, &failure))
		assert.True(t, failure.Retryable)
		assert.Equal(t, signedIn, failure.Session)
	})

	t.Run("visitor busy", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockAuthUC := mocks.NewMockAuthUC(ctrl)
		handler := NewAuthHandler(mockAuthUC)
		mockAuthUC.EXPECT().Logout(gomock.Any(), testVisitor).Return(models.Session{}, auth.ErrVisitorBusy)

		c, rec := newContext(http.MethodPost, "")
		require.NoError(t, handler.Logout(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestVisitorMiddleware(t *testing.T) {
	e := echo.New()
	mw := VisitorMiddleware(60)
	var seen string
	next := func(c echo.Context) error {
		seen = visitorID(c)
		return c.NoContent(http.StatusNoContent)
	}

	t.Run("issues a visitor id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, mw(next)(e.NewContext(req, rec)))

		_, err := uuid.Parse(seen)
		require.NoError(t, err)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, constants.VisitorCookie, cookies[0].Name)
		assert.Equal(t, seen, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, 3600, cookies[0].MaxAge)
	})

	t.Run("keeps a valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: constants.VisitorCookie, Value: testVisitor})
		rec := httptest.NewRecorder()
		require.NoError(t, mw(next)(e.NewContext(req, rec)))

		assert.Equal(t, testVisitor, seen)
	})

	t.Run("replaces a malformed cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: constants.VisitorCookie, Value: "../../etc"})
		rec := httptest.NewRecorder()
		require.NoError(t, mw(next)(e.NewContext(req, rec)))

		assert.NotEqual(t, "../../etc", seen)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
	})
}
