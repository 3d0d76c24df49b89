package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process-wide settings, loaded once at startup and passed
// explicitly into constructors. Nothing in this struct changes after Load.
type Config struct {
	ServerPort string

	DatabaseDSN string

	// JWTSecret signs both access and refresh tokens.
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	GeminiAPIKey string
	GeminiModel  string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	AllowedOrigins []string

	Debug bool
}

// DefaultJWTSecret is only used when SECRET_KEY is unset; main logs a warning
// when it is in effect.
const DefaultJWTSecret = "your-secret-key-change-this-in-production"

// Load reads configuration from the environment, after loading a .env file
// when one is present. Missing optional values fall back to defaults.
func Load() *Config {
	// A missing .env file is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		DatabaseDSN:     getEnv("DATABASE_DSN", "host=localhost port=5432 user=postgres dbname=asr_benchmark_hub sslmode=disable"),
		JWTSecret:       getEnv("SECRET_KEY", DefaultJWTSecret),
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		MinioEndpoint:   os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:  os.Getenv("MINIO_ACCESS_KEY_ID"),
		MinioSecretKey:  os.Getenv("MINIO_SECRET_ACCESS_KEY"),
		MinioBucket:     getEnv("MINIO_BUCKET_NAME", "benchmark-uploads"),
		MinioUseSSL:     getEnvBool("MINIO_USE_SSL", false),
		GeminiAPIKey:    os.Getenv("API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        getEnvInt("SMTP_PORT", 587),
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:        getEnv("SMTP_FROM", "noreply@asr-benchmark-hub.local"),
		Debug:           getEnvBool("DEBUG", false),
	}

	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
