package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/piresc/authgate/internal/pkg/constants"
	"github.com/piresc/authgate/services/auth"
)

const (
	msgFillAllFields  = "Please fill in all fields"
	msgAgreeToTerms   = "Please agree to the Terms and Conditions"
	msgPasswordLength = "Password must be at least 8 characters long"
	msgOTPLength      = "OTP code must be 6 digits"
)

// ValidateCredentials checks the sign-in form
func ValidateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return &auth.ValidationError{Field: "username", Message: msgFillAllFields}
	}
	return nil
}

// ValidateSignup checks the sign-up form: presence, then terms, then password length
func ValidateSignup(name, email, password string, agreed bool) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return &auth.ValidationError{Field: "name", Message: msgFillAllFields}
	}
	if !agreed {
		return &auth.ValidationError{Field: "agreed", Message: msgAgreeToTerms}
	}
	if utf8.RuneCountInString(password) < constants.MinPasswordLength {
		return &auth.ValidationError{Field: "password", Message: msgPasswordLength}
	}
	return nil
}

// NormalizeOTPCode strips whitespace and checks the code length
func NormalizeOTPCode(code string) (string, error) {
	code = strings.Join(strings.Fields(code), "")
	if utf8.RuneCountInString(code) != constants.OTPCodeLength {
		return "", &auth.ValidationError{Field: "otpCode", Message: msgOTPLength}
	}
	return code, nil
}
