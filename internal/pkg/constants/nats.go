package constants

// NATS Subjects
const (
	SubjectAuthEvents = "auth.events"
)

// Auth event types carried on SubjectAuthEvents and TopicAuthEvents
const (
	EventOTPRequested    = "otp_requested"
	EventLoginSucceeded  = "login_succeeded"
	EventLoginFailed     = "login_failed"
	EventSignupSucceeded = "signup_succeeded"
	EventLogout          = "logout"
)

// NSQ topics
const (
	TopicAuthEvents = "auth_events"
)
