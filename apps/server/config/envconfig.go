package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type EnvConfig struct {
	Port        string `envconfig:"PORT" default:"5000"`
	BaseURL     string `envconfig:"BASE_URL" required:"true"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	AuthSecret string `envconfig:"AUTH_SECRET" required:"true"`
	TokenTTL   int    `envconfig:"JWT_EXPIRES_IN" default:"604800"` // seconds; 7 days
	StateTTL   int    `envconfig:"OAUTH_STATE_TTL" default:"600"`

	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	GitHubClientID     string `envconfig:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `envconfig:"GITHUB_CLIENT_SECRET"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"finboard"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"password"`
	DBName     string `envconfig:"DB_NAME" default:"finboard"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// Empty RedisAddr selects the in-process state store (single node only).
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	AvatarBackend string `envconfig:"AVATAR_BACKEND" default:"local"` // local | s3
	UploadDir     string `envconfig:"UPLOAD_DIR" default:"uploads/avatars"`
	S3Endpoint    string `envconfig:"S3_ENDPOINT"`
	S3AccessKey   string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey   string `envconfig:"S3_SECRET_KEY"`
	S3Bucket      string `envconfig:"S3_BUCKET"`
	S3Region      string `envconfig:"S3_REGION"`
	S3UseSSL      bool   `envconfig:"S3_USE_SSL" default:"false"`

	RateLimit       int `envconfig:"RATE_LIMIT" default:"100"`
	RateLimitWindow int `envconfig:"RATE_LIMIT_WINDOW" default:"900"` // seconds
}

// IsDev returns true outside production deployments.
func IsDev() bool {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	return env == "development" || env == "dev" || env == ""
}

// IsProd returns true when running in production.
func (c *EnvConfig) IsProd() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

func ValidateEnv() (*EnvConfig, error) {
	if IsDev() {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found")
		} else {
			log.Println("loaded .env file")
		}
	}

	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if errs := cfg.validate(); len(errs) > 0 {
		return nil, fmt.Errorf("environment validation failed:\n  %s", strings.Join(errs, "\n  "))
	}

	return &cfg, nil
}

func (c *EnvConfig) validate() []string {
	var errors []string

	if len(c.AuthSecret) < 32 {
		errors = append(errors, "AUTH_SECRET must be at least 32 characters")
	}
	if c.TokenTTL <= 0 {
		errors = append(errors, "JWT_EXPIRES_IN must be positive")
	}

	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		errors = append(errors, "BASE_URL must be a valid URL")
	}
	if _, err := url.ParseRequestURI(c.FrontendURL); err != nil {
		errors = append(errors, "FRONTEND_URL must be a valid URL")
	}

	if (c.GoogleClientID != "") != (c.GoogleClientSecret != "") {
		errors = append(errors, "GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set together")
	}
	if (c.GitHubClientID != "") != (c.GitHubClientSecret != "") {
		errors = append(errors, "GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET must be set together")
	}

	switch c.AvatarBackend {
	case "local":
	case "s3":
		if c.S3Endpoint == "" || c.S3AccessKey == "" || c.S3SecretKey == "" || c.S3Bucket == "" {
			errors = append(errors, "AVATAR_BACKEND=s3 requires S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY and S3_BUCKET")
		}
	default:
		errors = append(errors, "AVATAR_BACKEND must be 'local' or 's3'")
	}

	return errors
}

func MaskSecret(secret string) string {
	if secret == "" {
		return "<not set>"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

func (c *EnvConfig) Print(fmtr func(string, ...interface{})) {
	fmtr("Configuration:\n")
	fmtr("  Environment: %s\n", c.Environment)
	fmtr("  Port: %s\n", c.Port)
	fmtr("  Base URL: %s\n", c.BaseURL)
	fmtr("  Frontend URL: %s\n", c.FrontendURL)
	fmtr("  Auth Secret: %s\n", MaskSecret(c.AuthSecret))
	fmtr("  Avatar backend: %s\n", c.AvatarBackend)

	if c.GoogleClientID != "" {
		fmtr("  Google OAuth: enabled (client %s)\n", MaskSecret(c.GoogleClientID))
	} else {
		fmtr("  Google OAuth: disabled\n")
	}
	if c.GitHubClientID != "" {
		fmtr("  GitHub OAuth: enabled (client %s)\n", MaskSecret(c.GitHubClientID))
	} else {
		fmtr("  GitHub OAuth: disabled\n")
	}
}
