package usecase

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/piresc/authgate/services/auth"
)

const (
	msgNoGoogleCredential  = "No credential received from Google"
	msgMalformedCredential = "Google credential is malformed"
	msgExpiredCredential   = "Google credential has expired. Please try again."
	msgWrongAudience       = "Google credential was issued for another application"
)

// GoogleCredentialChecker sanity-checks a Google ID token before it is
// forwarded. The signature is left to the backend.
type GoogleCredentialChecker struct {
	clientID string
	now      func() time.Time
	parser   *jwt.Parser
}

// NewGoogleCredentialChecker creates a checker. An empty clientID skips the audience check.
func NewGoogleCredentialChecker(clientID string) *GoogleCredentialChecker {
	return &GoogleCredentialChecker{
		clientID: clientID,
		now:      time.Now,
		parser:   jwt.NewParser(),
	}
}

// Check returns the token's email claim when the credential looks usable
func (g *GoogleCredentialChecker) Check(credential string) (string, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", &auth.ValidationError{Field: "credential", Message: msgNoGoogleCredential}
	}

	claims := jwt.MapClaims{}
	if _, _, err := g.parser.ParseUnverified(credential, claims); err != nil {
		return "", &auth.ValidationError{Field: "credential", Message: msgMalformedCredential}
	}

	if !claims.VerifyExpiresAt(g.now().Unix(), false) {
		return "", &auth.ValidationError{Field: "credential", Message: msgExpiredCredential}
	}
	if g.clientID != "" && !claims.VerifyAudience(g.clientID, true) {
		return "", &auth.ValidationError{Field: "credential", Message: msgWrongAudience}
	}

	email, _ := claims["email"].(string)
	return email, nil
}
