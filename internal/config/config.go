package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const DefaultGlamourStyle = "dark"

const defaultAPIBaseURL = "http://localhost:8000/api/v1"

type AppConfig struct {
	APIBaseURL    string
	SessionDBPath string
	RetrieverMode string
	GlamourStyle  string
	LogLevel      string
}

// Load resolves configuration from the environment, with an optional
// .env file in the working directory filling in anything unset. Flags
// layered on top by the CLI win over both.
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{
		APIBaseURL:    envOr("MEDRAG_API_URL", defaultAPIBaseURL),
		SessionDBPath: os.Getenv("MEDRAG_SESSION_DB"),
		RetrieverMode: envOr("MEDRAG_RETRIEVER", "hybrid"),
		GlamourStyle:  envOr("MEDRAG_GLAMOUR_STYLE", DefaultGlamourStyle),
		LogLevel:      envOr("MEDRAG_LOG_LEVEL", "info"),
	}

	if cfg.SessionDBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.SessionDBPath = filepath.Join(home, ".local", "share", "medrag", "session.sqlite")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SessionDBPath), 0o755); err != nil {
		return cfg, fmt.Errorf("create session db dir: %w", err)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
