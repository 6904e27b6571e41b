package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/piresc/authgate/internal/pkg/constants"
	"github.com/piresc/authgate/internal/pkg/models"
	authhttp "github.com/piresc/authgate/services/auth/handler/http"
	"github.com/piresc/authgate/services/auth/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *models.Config {
	return &models.Config{
		Flow:      models.FlowConfig{VisitorTTL: 60},
		RateLimit: models.RateLimitConfig{Requests: 2, Period: 60},
	}
}

func TestRegisterRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewHandler(authhttp.NewAuthHandler(mocks.NewMockAuthUC(ctrl)), nil, testConfig())
	e := echo.New()
	h.RegisterRoutes(e)

	registered := map[string]bool{}
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /auth/flow",
		"GET /auth/session",
		"POST /auth/signin",
		"POST /auth/signup",
		"POST /auth/google",
		"POST /auth/otp/verify",
		"POST /auth/otp/resend",
		"POST /auth/otp/back",
		"POST /auth/logout",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestRegisterRoutes_RateLimitsSubmissions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	mockAuthUC := mocks.NewMockAuthUC(ctrl)
	mockAuthUC.EXPECT().SignIn(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.FlowState{Phase: models.PhaseCollectingCredentials}, nil).Times(2)
	mockAuthUC.EXPECT().Flow(gomock.Any(), gomock.Any()).
		Return(models.FlowState{Phase: models.PhaseCollectingCredentials}, nil).Times(3)

	h := NewHandler(authhttp.NewAuthHandler(mockAuthUC), client, testConfig())
	e := echo.New()
	h.RegisterRoutes(e)

	visitor := &http.Cookie{Name: constants.VisitorCookie, Value: "0b8f7a52-3d4c-4a56-9d1e-6f1c2e3a4b5c"}
	signIn := func() int {
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(`{"username":"alice","password":"secret123"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.AddCookie(visitor)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, signIn())
	assert.Equal(t, http.StatusOK, signIn())
	assert.Equal(t, http.StatusTooManyRequests, signIn())

	// reads are not limited
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/auth/flow", nil)
		req.AddCookie(visitor)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
