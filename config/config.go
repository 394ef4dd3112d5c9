// File: /config/config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	LogLevel    string
	DatabaseURL string

	// Number of events fetched per scan page
	EventsPageSize int

	// Secret store ids
	JWTSecretName              string
	ThirdPartyClientSecretName string

	// Object storage
	MinioEndpoint         string
	MinioAccessKey        string
	MinioSecretKey        string
	MinioUseSSL           bool
	EventPicturesBucket   string
	ProfilePicturesBucket string
	ProfilePicturesPrefix string

	// Email Configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string

	// Winner notifications
	RabbitURL      string
	RabbitExchange string
	RabbitQueue    string

	RateLimitPerMinute int
	RateLimitBurst     int
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", "user:password@tcp(localhost:3306)/clubnight?charset=utf8mb4&parseTime=True&loc=UTC"),

		EventsPageSize: getEnvInt("EVENTS_PAGE_SIZE", 100),

		JWTSecretName:              getEnv("JWT_SECRET_NAME", "CLUBNIGHT_JWT"),
		ThirdPartyClientSecretName: getEnv("THIRD_PARTY_CLIENTS_SECRET_NAME", "CLUBNIGHT_OAUTH_CLIENTS"),

		MinioEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:           getEnvBool("MINIO_USE_SSL", false),
		EventPicturesBucket:   getEnv("EVENT_PICTURES_BUCKET", "event-pictures"),
		ProfilePicturesBucket: getEnv("PROFILE_PICTURES_BUCKET", "profile-pictures"),
		ProfilePicturesPrefix: getEnv("PROFILE_PICTURES_PREFIX", "profile-pictures/"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 2525),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@clubnight.app"),
		FromName:     getEnv("FROM_NAME", "Clubnight"),

		RabbitURL:      getEnv("RABBITMQ_URL", ""),
		RabbitExchange: getEnv("RABBITMQ_EXCHANGE", "giveaways"),
		RabbitQueue:    getEnv("RABBITMQ_QUEUE", "giveaway-winners"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}
