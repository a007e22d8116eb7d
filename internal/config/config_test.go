package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ExpandsModelPlaceholdersAndAppliesEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlDoc := `
models:
  embedding: nomic-embed-text
  llm: llama3.2
ollama:
  url: "${models.embedding}-backed-url"
server:
  port: 9000
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HTTP_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Ollama.URL != "nomic-embed-text-backed-url" {
		t.Errorf("expected placeholder expansion, got %q", cfg.Ollama.URL)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("expected env override to win over YAML, got %d", cfg.Server.Port)
	}
}

func TestLoad_MissingPlaceholderTargetFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlDoc := `
models:
  embedding: nomic-embed-text
ollama:
  url: "${models.missing}"
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an unresolvable placeholder")
	}
}

func TestLoad_NoConfigFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
}
