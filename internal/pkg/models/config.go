package models

// Config represents application configuration
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Backend   BackendConfig
	Flow      FlowConfig
	Redis     RedisConfig
	NATS      NATSConfig
	NSQ       NSQConfig
	RateLimit RateLimitConfig
	Logger    LoggerConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout int // in seconds
}

// BackendConfig describes the external auth API the flow delegates to
type BackendConfig struct {
	BaseURL string
	Timeout int // in seconds
	Retries int // retries for idempotent GETs only

	BreakerThreshold int // consecutive failures before calls short-circuit; 0 disables
	BreakerTimeout   int // in seconds
}

// FlowConfig contains sign-in flow configuration
type FlowConfig struct {
	LandingPath    string
	GoogleClientID string
	VisitorTTL     int // in minutes
	RequestTimeout int // in seconds; bounds the backend calls of one BFF request
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL string
}

// NSQConfig contains the nsqd address auth events are also published to
type NSQConfig struct {
	Address string
}

// RateLimitConfig bounds how often a single client may hit the auth routes
type RateLimitConfig struct {
	Requests int
	Period   int // in seconds
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level    string
	FilePath string
}
