// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all environment-derived settings for the API server.
type Config struct {
	// Port the HTTP server listens on. Default 8080.
	Port int

	// AppEnv is the deployment environment (development, production).
	AppEnv string

	// OpenWeatherAPIKey authenticates against the pollution data provider.
	OpenWeatherAPIKey string

	// NewsAPIKey authenticates against the news search provider.
	NewsAPIKey string

	// OpenAIAPIKey authenticates the news summarizer.
	OpenAIAPIKey string

	// OpenRouterAPIKey authenticates the recommendation provider.
	OpenRouterAPIKey string

	// DatabaseURL enables Postgres observation persistence when set.
	DatabaseURL string

	// OTELEnabled toggles OpenTelemetry export.
	OTELEnabled bool

	// OTELEndpoint is the OTLP gRPC collector endpoint.
	OTELEndpoint string
}

// MissingError reports an absent required credential.
type MissingError struct {
	// Key is the environment variable that was not set.
	Key string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Key)
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present; real environment variables win.
func Load() Config {
	// Ignore the error: a missing .env file is the normal production case.
	_ = godotenv.Load()

	return Config{
		Port:              getEnvIntOrDefault("PORT", 8080),
		AppEnv:            getEnvOrDefault("APP_ENV", "development"),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		NewsAPIKey:        os.Getenv("NEWSAPI_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		OTELEnabled:       os.Getenv("OTEL_ENABLED") == "true",
		OTELEndpoint:      getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

// Require returns the value of key, or a *MissingError naming it when unset.
// Handlers surface this as a 500 configuration error rather than succeeding
// with empty upstream credentials.
func Require(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", &MissingError{Key: key}
	}
	return value, nil
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
