package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the pipeline needs from the environment.
type Config struct {
	ProjectID string
	DatasetID string
	Bucket    string

	// Gemini model used for extraction, classification and narrative
	// generation.
	ModelName string

	// Category ids with special meaning to the engine.
	SavingsCategoryID    string
	PeerToPeerCategoryID string

	// Task queue envelope.
	MaxRetries   int
	RetryBackoff time.Duration

	// Fan-out caps for the external collaborators.
	ExtractConcurrency  int
	ClassifyConcurrency int

	// Base URL used in the completion notification's deep link.
	AppBaseURL string
}

// Load reads configuration from the environment. A local .env file is
// honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	projectID := os.Getenv("GCP_PROJECT_ID")
	if projectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT_ID is not set")
	}

	cfg := &Config{
		ProjectID:            projectID,
		DatasetID:            getenv("BQ_DATASET", "kudi"),
		Bucket:               getenv("GCS_BUCKET", "usekudi-statements"),
		ModelName:            getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		SavingsCategoryID:    os.Getenv("SAVINGS_CATEGORY_ID"),
		PeerToPeerCategoryID: os.Getenv("PEER_TO_PEER_CATEGORY_ID"),
		MaxRetries:           getenvInt("TASK_MAX_RETRIES", 10),
		RetryBackoff:         time.Duration(getenvInt("TASK_RETRY_BACKOFF_SECONDS", 60)) * time.Second,
		ExtractConcurrency:   getenvInt("EXTRACT_CONCURRENCY", 4),
		ClassifyConcurrency:  getenvInt("CLASSIFY_CONCURRENCY", 4),
		AppBaseURL:           getenv("APP_BASE_URL", "https://app.usekudi.com"),
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
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
