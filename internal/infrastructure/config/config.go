// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string `validate:"oneof=debug info warn error"`

	// Server
	Port         string `validate:"required,numeric"`
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// WhatsApp
	WhatsAppToken         string `validate:"required"`
	WhatsAppPhoneNumberID string `validate:"required"`
	WhatsAppVerifyToken   string `validate:"required"`
	WhatsAppAppSecret     string
	WhatsAppAPIURL        string `validate:"required,url"`

	// Amadeus
	AmadeusAPIKey    string `validate:"required"`
	AmadeusAPISecret string `validate:"required"`
	AmadeusBaseURL   string `validate:"required,url"`

	// Flow
	FlightSearchMax    int `validate:"min=1,max=250"`
	ResultsPageSize    int `validate:"min=1,max=10"`
	HTTPClientTimeout  time.Duration
	ConversationTTL    time.Duration
	RateLimitPerMinute int `validate:"min=1"`

	// Reference data (optional)
	PostgresURI string

	// MongoDB signal sink (optional)
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := load()

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadToolConfig loads the same environment but only requires what the operator CLI uses
func LoadToolConfig() (*Config, error) {
	config := load()

	err := validator.New().StructPartial(config,
		"LogLevel", "AmadeusAPIKey", "AmadeusAPISecret", "AmadeusBaseURL", "FlightSearchMax", "ResultsPageSize")
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	return &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		LogLevel:     strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Port:         getEnv("PORT", "3000"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 60)) * time.Second,

		WhatsAppToken:         getEnv("WHATSAPP_TOKEN", ""),
		WhatsAppPhoneNumberID: getEnv("PHONE_NUMBER_ID", ""),
		WhatsAppVerifyToken:   getEnv("VERIFY_TOKEN", ""),
		WhatsAppAppSecret:     getEnv("WHATSAPP_APP_SECRET", ""),
		WhatsAppAPIURL:        getEnv("WHATSAPP_API_URL", "https://graph.facebook.com/v19.0"),

		AmadeusAPIKey:    getEnv("AMADEUS_API_KEY", ""),
		AmadeusAPISecret: getEnv("AMADEUS_API_SECRET", ""),
		AmadeusBaseURL:   getEnv("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),

		FlightSearchMax:    getEnvAsInt("FLIGHT_SEARCH_MAX", 5),
		ResultsPageSize:    getEnvAsInt("RESULTS_PAGE_SIZE", 3),
		HTTPClientTimeout:  time.Duration(getEnvAsInt("HTTP_CLIENT_TIMEOUT", 30)) * time.Second,
		ConversationTTL:    time.Duration(getEnvAsInt("CONVERSATION_TTL", 24*60)) * time.Minute,
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 20),

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		MongoURI:      getEnv("MONGODB_DSN", ""),
		MongoDB:       getEnv("MONGO_DB", "flightbot"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),
	}
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
