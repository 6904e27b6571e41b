package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSuccessResponse(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		message    string
		data       interface{}
	}{
		{
			name:       "Success with string data",
			statusCode: http.StatusOK,
			message:    "Login successful!",
			data:       "alice",
		},
		{
			name:       "Success with map data",
			statusCode: http.StatusOK,
			message:    "OTP sent to your email!",
			data:       map[string]interface{}{"phase": "collecting-otp"},
		},
		{
			name:       "Success with nil data",
			statusCode: http.StatusOK,
			message:    "",
			data:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext()

			err := SuccessResponse(c, tt.statusCode, tt.message, tt.data)
			assert.NoError(t, err)
			assert.Equal(t, tt.statusCode, rec.Code)

			var response Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.True(t, response.Success)
			assert.Equal(t, tt.message, response.Message)
			assert.Equal(t, tt.data, response.Data)
			assert.Empty(t, response.Error)
		})
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name         string
		send         func(c echo.Context) error
		expectStatus int
		expectError  string
	}{
		{"bad request", func(c echo.Context) error { return BadRequestResponse(c, "Please fill in all fields") }, http.StatusBadRequest, "Please fill in all fields"},
		{"unauthorized default", func(c echo.Context) error { return UnauthorizedResponse(c, "") }, http.StatusUnauthorized, "Unauthorized"},
		{"conflict default", func(c echo.Context) error { return ConflictResponse(c, "") }, http.StatusConflict, "Conflict"},
		{"internal default", func(c echo.Context) error { return InternalServerErrorResponse(c, "") }, http.StatusInternalServerError, "Internal server error"},
		{"service unavailable", func(c echo.Context) error { return ServiceUnavailableResponse(c, "redis down") }, http.StatusServiceUnavailable, "redis down"},
		{"bad gateway default", func(c echo.Context) error { return BadGatewayResponse(c, "", nil) }, http.StatusBadGateway, "Bad gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext()

			assert.NoError(t, tt.send(c))
			assert.Equal(t, tt.expectStatus, rec.Code)

			var response Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.False(t, response.Success)
			assert.Equal(t, tt.expectError, response.Error)
			assert.Equal(t, tt.expectStatus, response.Code)
		})
	}
}

func TestErrorResponseWithData(t *testing.T) {
	c, rec := newContext()

	err := BadGatewayResponse(c, "Logout failed", map[string]bool{"retryable": true})
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Logout failed","data":{"retryable":true},"code":502}`, rec.Body.String())
}
