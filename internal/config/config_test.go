package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// Run from an empty directory so no stray .doctran.yaml is picked up.
	restore := chdir(t, t.TempDir())
	defer restore()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Services) != 1 || cfg.Services[0] != "google" {
		t.Errorf("expected default services [google], got %v", cfg.Services)
	}
	if len(cfg.Tesseract.Languages) != 1 || cfg.Tesseract.Languages[0] != "eng" {
		t.Errorf("expected default OCR language eng, got %v", cfg.Tesseract.Languages)
	}
	if cfg.Tesseract.DPI != 300 {
		t.Errorf("expected default DPI 300, got %d", cfg.Tesseract.DPI)
	}
	if cfg.Cache.Path != "./data/doctran.db" {
		t.Errorf("unexpected default cache path: %q", cfg.Cache.Path)
	}
	if cfg.Ollama.BaseURL != "http://localhost:11434" {
		t.Errorf("unexpected default ollama url: %q", cfg.Ollama.BaseURL)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
services:
  - mymemory
  - ollama
tesseract:
  languages: [eng, deu]
  dpi: 450
azure:
  endpoint: https://example.cognitiveservices.azure.com
  api_key: secret
cache:
  fuzzy_threshold: 0.85
debug: true
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Services) != 2 || cfg.Services[0] != "mymemory" || cfg.Services[1] != "ollama" {
		t.Errorf("unexpected services: %v", cfg.Services)
	}
	if len(cfg.Tesseract.Languages) != 2 || cfg.Tesseract.Languages[1] != "deu" {
		t.Errorf("unexpected OCR languages: %v", cfg.Tesseract.Languages)
	}
	if cfg.Tesseract.DPI != 450 {
		t.Errorf("expected DPI 450, got %d", cfg.Tesseract.DPI)
	}
	if cfg.Azure.APIKey != "secret" {
		t.Errorf("azure key not loaded: %q", cfg.Azure.APIKey)
	}
	if cfg.Cache.FuzzyThreshold != 0.85 {
		t.Errorf("expected fuzzy threshold 0.85, got %f", cfg.Cache.FuzzyThreshold)
	}
	if !cfg.Debug {
		t.Error("expected debug true")
	}
}

func TestLoad_NamedFileMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("expected error for explicitly named missing file")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	restore := chdir(t, t.TempDir())
	defer restore()

	t.Setenv("DOCTRAN_AZURE_API_KEY", "from-env")
	t.Setenv("DOCTRAN_DEBUG", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Azure.APIKey != "from-env" {
		t.Errorf("env override not applied: %q", cfg.Azure.APIKey)
	}
	if !cfg.Debug {
		t.Error("expected debug from env")
	}
}

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	return func() { os.Chdir(old) }
}
