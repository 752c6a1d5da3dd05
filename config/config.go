package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime parameter of the application.
type Config struct {
	DatabaseURL  string     `env:"DATABASE_URL,required"`
	JWTSecretKey string     `env:"JWT_SECRET_KEY,required"`
	ServerPort   int        `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel     slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	R2AccountID       string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `env:"R2_BUCKET_NAME"`
	R2PublicBaseURL   string `env:"R2_PUBLIC_BASE_URL"`

	// Facial verification tuning. The three-tier auto-accept /
	// needs-review / auto-reject structure is fixed; only the cut
	// points move.
	FaceCascadePath       string        `env:"FACE_CASCADE_PATH" envDefault:"cascade/facefinder"`
	FaceDetectionMode     string        `env:"FACE_DETECTION_MODE" envDefault:"fast"`
	FaceMatchTolerance    float64       `env:"FACE_MATCH_TOLERANCE" envDefault:"0.6"`
	VerifyAutoThreshold   float64       `env:"VERIFY_AUTO_THRESHOLD" envDefault:"0.7"`
	VerifyReviewThreshold float64       `env:"VERIFY_REVIEW_THRESHOLD" envDefault:"0.5"`
	VerifyWorkers         int           `env:"VERIFY_WORKERS" envDefault:"4"`
	VerifyTimeout         time.Duration `env:"VERIFY_TIMEOUT" envDefault:"5s"`
}

// Load reads configuration from environment variables, optionally seeded
// from a .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}
	if cfg.VerifyReviewThreshold >= cfg.VerifyAutoThreshold {
		return nil, fmt.Errorf("VERIFY_REVIEW_THRESHOLD (%.2f) must be below VERIFY_AUTO_THRESHOLD (%.2f)",
			cfg.VerifyReviewThreshold, cfg.VerifyAutoThreshold)
	}

	return &cfg, nil
}
