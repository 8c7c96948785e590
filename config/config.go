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

// Config holds environment driven configuration values.
// Credentials never have defaults in code; they come from .env or the environment.
type Config struct {
	Port            string        `validate:"required,numeric"`
	GinMode         string        `validate:"oneof=debug release test"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
	MaxUploadMB     int           `validate:"gt=0"`
	RateLimit       int           `validate:"gte=0"`
	AllowedOrigins  []string

	Storage  StorageConfig
	Database DatabaseConfig
	Session  SessionConfig
	Log      LogConfig
}

// StorageConfig configures the S3 object store.
type StorageConfig struct {
	Region          string `validate:"required"`
	Bucket          string `validate:"required"`
	AccessKeyID     string `validate:"required_with=SecretAccessKey"`
	SecretAccessKey string `validate:"required_with=AccessKeyID"`
	Endpoint        string `validate:"omitempty,url"`
	PublicBaseURL   string `validate:"omitempty,url"`
	PresignTTL      time.Duration
}

// DatabaseConfig configures the metadata store.
type DatabaseConfig struct {
	Driver   string `validate:"oneof=postgres sqlite mongo"`
	URL      string `validate:"required_unless=Driver mongo"`
	Username string
	Password string
	MongoURI string `validate:"required_if=Driver mongo"`
	MongoDB  string
}

type SessionConfig struct {
	Secret        string `validate:"required,min=16"`
	RedisAddr     string
	RedisUsername string
	RedisPassword string
}

type LogConfig struct {
	Level      string `validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var validate = validator.New()

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a validated Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	var errs []string
	intEnv := func(key string, def int) int {
		raw := env(key, "")
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return def
		}
		return n
	}
	durationEnv := func(key string, def time.Duration) time.Duration {
		raw := env(key, "")
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return def
		}
		return d
	}
	boolEnv := func(key string) bool {
		b, _ := strconv.ParseBool(env(key, "false"))
		return b
	}

	cfg := Config{
		Port:            env("PORT", "8080"),
		GinMode:         strings.ToLower(env("GIN_MODE", "release")),
		ShutdownTimeout: durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxUploadMB:     intEnv("MAX_UPLOAD_MB", 10),
		RateLimit:       intEnv("RATE_LIMIT_PER_MINUTE", 60),
		AllowedOrigins:  splitList(env("ALLOWED_ORIGINS", "*")),
		Storage: StorageConfig{
			Region:          env("AWS_REGION", ""),
			Bucket:          env("BUCKET_NAME", ""),
			AccessKeyID:     env("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: env("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        env("S3_ENDPOINT", ""),
			PublicBaseURL:   strings.TrimRight(env("S3_PUBLIC_BASE_URL", ""), "/"),
			PresignTTL:      durationEnv("PRESIGN_TTL", 15*time.Minute),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(env("DB_DRIVER", "postgres")),
			URL:      env("DATABASE_URL", ""),
			Username: env("DB_USERNAME", ""),
			Password: env("DB_PASSWORD", ""),
			MongoURI: env("MONGO_URI", ""),
			MongoDB:  env("MONGO_DATABASE", "imagestore"),
		},
		Session: SessionConfig{
			Secret:        env("SESSION_SECRET", ""),
			RedisAddr:     env("REDIS_ADDR", ""),
			RedisUsername: env("REDIS_USERNAME", ""),
			RedisPassword: env("REDIS_PASSWORD", ""),
		},
		Log: LogConfig{
			Level:      strings.ToLower(env("LOG_LEVEL", "info")),
			Path:       env("LOG_PATH", ""),
			MaxSizeMB:  intEnv("LOG_MAX_SIZE_MB", 100),
			MaxBackups: intEnv("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: intEnv("LOG_MAX_AGE_DAYS", 7),
			Compress:   boolEnv("LOG_COMPRESS"),
		},
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
