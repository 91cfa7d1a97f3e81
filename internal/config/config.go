package config

import (
	"os"
	"strconv"
	"time"

	"github.com/yukimura/org-identity-api/internal/constants"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string

	// External Auth Service (system of record for identity, sessions,
	// organizations and membership).
	AuthServiceURL     string
	AuthServiceTimeout time.Duration

	// How long a validated session may be served from the local session
	// cache before it is re-checked against the Auth Service.
	SessionCacheTTL time.Duration

	SlugMaxAttempts  int
	CreateMaxRetries int

	// Blob storage for organization logos and user avatars.
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	S3PresignTTL time.Duration
}

func Load() *Config {
	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "identity"),
		DBPassword: getEnv("DB_PASSWORD", "identity"),
		DBName:     getEnv("DB_NAME", "org_identity"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:       getEnv("GIN_MODE", "debug"),

		AuthServiceURL:     getEnv("AUTH_SERVICE_URL", "http://localhost:3000/api/auth"),
		AuthServiceTimeout: getEnvDuration("AUTH_SERVICE_TIMEOUT", 10*time.Second),
		SessionCacheTTL:    getEnvDuration("SESSION_CACHE_TTL", time.Minute),

		SlugMaxAttempts:  getEnvInt("SLUG_MAX_ATTEMPTS", constants.DefaultSlugMaxAttempts),
		CreateMaxRetries: getEnvInt("CREATE_MAX_RETRIES", constants.DefaultCreateMaxRetries),

		S3Bucket:     getEnv("S3_BUCKET", "org-identity-media"),
		S3Region:     getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),
		S3AccessKey:  getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:  getEnv("S3_SECRET_KEY", ""),
		S3PresignTTL: getEnvDuration("S3_PRESIGN_TTL", 15*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
