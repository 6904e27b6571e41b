package constants

// Cookies
const (
	VisitorCookie = "authgate_vid"
	CSRFCookie    = "csrftoken"
	CSRFHeader    = "X-CSRFToken"
)

// Backend endpoints, relative to the auth API base URL
const (
	PathSession     = "/session/"
	PathSignup      = "/signup/"
	PathLogin       = "/login/"
	PathVerifyOTP   = "/verify-otp/"
	PathResendOTP   = "/resend-otp/"
	PathLogout      = "/logout/"
	PathWhoAmI      = "/whoami/"
	PathGoogleLogin = "/auth/google/"
)

// Context keys
const (
	VisitorIDKey = "visitor_id"
)

// User-facing notices
const (
	NoticeOTPSent      = "OTP sent to your email!"
	NoticeOTPResent    = "OTP resent to your email!"
	NoticeLoginSuccess = "Login successful!"
	NoticeNetworkError = "Network error. Please try again."
)

// Validation bounds
const (
	MinPasswordLength = 8
	OTPCodeLength     = 6
)
