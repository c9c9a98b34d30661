package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MEDRAG_API_URL", "")
	t.Setenv("MEDRAG_SESSION_DB", filepath.Join(t.TempDir(), "session.sqlite"))
	t.Setenv("MEDRAG_RETRIEVER", "")
	t.Setenv("MEDRAG_GLAMOUR_STYLE", "")
	t.Setenv("MEDRAG_LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Errorf("unexpected api url %q", cfg.APIBaseURL)
	}
	if cfg.RetrieverMode != "hybrid" {
		t.Errorf("unexpected retriever mode %q", cfg.RetrieverMode)
	}
	if cfg.GlamourStyle != DefaultGlamourStyle {
		t.Errorf("unexpected glamour style %q", cfg.GlamourStyle)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("unexpected log level %q", cfg.LogLevel)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MEDRAG_API_URL", "https://rag.example.com/api/v1")
	t.Setenv("MEDRAG_SESSION_DB", filepath.Join(dir, "nested", "session.sqlite"))
	t.Setenv("MEDRAG_RETRIEVER", "vector")
	t.Setenv("MEDRAG_GLAMOUR_STYLE", "notty")
	t.Setenv("MEDRAG_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://rag.example.com/api/v1" {
		t.Errorf("api url override ignored: %q", cfg.APIBaseURL)
	}
	if cfg.RetrieverMode != "vector" || cfg.GlamourStyle != "notty" || cfg.LogLevel != "debug" {
		t.Errorf("overrides ignored: %+v", cfg)
	}
	// The session db directory is created on load.
	if cfg.SessionDBPath != filepath.Join(dir, "nested", "session.sqlite") {
		t.Errorf("unexpected session db path %q", cfg.SessionDBPath)
	}
}
