package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/piresc/authgate/internal/pkg/models"
)

// DefaultBackendURL is used when AUTH_API_URL is not set
const DefaultBackendURL = "http://localhost:8000"

func InitConfig(configPath string) *models.Config {
	local := GetEnv("APP_ENV", "local")
	if local == "local" && configPath != "" {
		// Load config from file
		err := godotenv.Load(configPath)
		if err != nil {
			log.Println("error loading config from file", err)
		}
	}
	// Create config from environment variables
	return loadConfigFromEnv()
}

func loadConfigFromEnv() *models.Config {
	configs := &models.Config{}

	// App config
	configs.App.Name = GetEnv("APP_NAME", "authgate")
	configs.App.Environment = GetEnv("APP_ENV", "local")
	configs.App.Debug = GetEnvAsBool("APP_DEBUG", false)
	configs.App.Version = GetEnv("APP_VERSION", "")

	// Server config
	configs.Server.Host = GetEnv("SERVER_HOST", "")
	configs.Server.Port = GetEnvAsInt("SERVER_PORT", 8080)
	configs.Server.ShutdownTimeout = GetEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 30)

	// Backend config
	configs.Backend.BaseURL = GetEnv("AUTH_API_URL", DefaultBackendURL)
	configs.Backend.Timeout = GetEnvAsInt("AUTH_API_TIMEOUT", 10)
	configs.Backend.Retries = GetEnvAsInt("AUTH_API_RETRIES", 2)
	configs.Backend.BreakerThreshold = GetEnvAsInt("AUTH_API_BREAKER_THRESHOLD", 5)
	configs.Backend.BreakerTimeout = GetEnvAsInt("AUTH_API_BREAKER_TIMEOUT", 30)

	// Flow config
	configs.Flow.LandingPath = GetEnv("AUTH_LANDING_PATH", "/")
	configs.Flow.GoogleClientID = GetEnv("GOOGLE_CLIENT_ID", "")
	configs.Flow.VisitorTTL = GetEnvAsInt("VISITOR_TTL", 60)
	configs.Flow.RequestTimeout = GetEnvAsInt("FLOW_REQUEST_TIMEOUT", 20)

	// Redis config
	configs.Redis.Host = GetEnv("REDIS_HOST", "localhost")
	configs.Redis.Port = GetEnvAsInt("REDIS_PORT", 6379)
	configs.Redis.Password = GetEnv("REDIS_PASSWORD", "")
	configs.Redis.DB = GetEnvAsInt("REDIS_DB", 0)
	configs.Redis.PoolSize = GetEnvAsInt("REDIS_POOL_SIZE", 10)

	// NATS config
	configs.NATS.URL = GetEnv("NATS_URL", "")

	// NSQ config
	configs.NSQ.Address = GetEnv("NSQ_ADDR", "")

	// Rate limit config
	configs.RateLimit.Requests = GetEnvAsInt("RATE_LIMIT_REQUESTS", 20)
	configs.RateLimit.Period = GetEnvAsInt("RATE_LIMIT_PERIOD", 60)

	// Logger config
	configs.Logger.Level = GetEnv("LOG_LEVEL", "info")
	configs.Logger.FilePath = GetEnv("LOG_FILE_PATH", "")

	return configs
}

// Helper functions to get environment variables with different types
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}
