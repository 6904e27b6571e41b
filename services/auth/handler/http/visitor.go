package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/piresc/authgate/internal/pkg/constants"
)

// VisitorMiddleware identifies the browser by the authgate_vid cookie,
// issuing a new visitor ID when the cookie is missing or malformed.
func VisitorMiddleware(ttlMinutes int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			visitorID := ""
			if cookie, err := c.Cookie(constants.VisitorCookie); err == nil {
				if _, err := uuid.Parse(cookie.Value); err == nil {
					visitorID = cookie.Value
				}
			}
			if visitorID == "" {
				visitorID = uuid.NewString()
			}

			c.SetCookie(&http.Cookie{
				Name:     constants.VisitorCookie,
				Value:    visitorID,
				Path:     "/",
				MaxAge:   ttlMinutes * 60,
				HttpOnly: true,
				Secure:   c.IsTLS(),
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(constants.VisitorIDKey, visitorID)

			return next(c)
		}
	}
}

func visitorID(c echo.Context) string {
	id, _ := c.Get(constants.VisitorIDKey).(string)
	return id
}
