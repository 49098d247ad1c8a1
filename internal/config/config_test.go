package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("LLM_RETRY_MAX_ATTEMPTS", "")
	t.Setenv("PDF_EXTRACTION_MODE", "")
	t.Setenv("HANDOFF_BACKEND", "")
	t.Setenv("HANDOFF_TTL", "")
	t.Setenv("NATS_URL", "")

	cfg := Load()
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("expected 10 MiB upload cap, got %d", cfg.MaxUploadBytes)
	}
	if cfg.LLMProvider != "ollama" {
		t.Fatalf("expected default provider ollama, got %q", cfg.LLMProvider)
	}
	if cfg.LLMRetryMaxAttempts != 1 {
		t.Fatalf("expected a single attempt by default, got %d", cfg.LLMRetryMaxAttempts)
	}
	if cfg.PDFExtractionMode != "scrape" {
		t.Fatalf("expected scrape mode, got %q", cfg.PDFExtractionMode)
	}
	if cfg.HandoffBackend != "memory" || cfg.HandoffTTL != 15*time.Minute {
		t.Fatalf("unexpected handoff defaults %q/%v", cfg.HandoffBackend, cfg.HandoffTTL)
	}
	if cfg.NATSURL != "" {
		t.Fatalf("events must be disabled by default, got %q", cfg.NATSURL)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("MAX_UPLOAD_BYTES", "0")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("API_BACKPRESSURE_WAIT", "1s")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("LLM_STRUCTURED_OUTPUT", "true")
	t.Setenv("HANDOFF_TTL", "90s")

	cfg := Load()
	if cfg.MaxUploadBytes != 0 {
		t.Fatalf("expected disabled upload cap, got %d", cfg.MaxUploadBytes)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.RateLimitRPS)
	}
	if cfg.BackpressureWait != time.Second {
		t.Fatalf("expected 1s backpressure wait, got %v", cfg.BackpressureWait)
	}
	if cfg.LLMProvider != "gemini" || !cfg.StructuredOutput {
		t.Fatalf("unexpected llm settings %q/%v", cfg.LLMProvider, cfg.StructuredOutput)
	}
	if cfg.HandoffTTL != 90*time.Second {
		t.Fatalf("expected 90s ttl, got %v", cfg.HandoffTTL)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("API_RATE_LIMIT_BURST", "many")
	t.Setenv("HANDOFF_TTL", "soon")

	cfg := Load()
	if cfg.RateLimitBurst != 20 {
		t.Fatalf("expected default burst, got %d", cfg.RateLimitBurst)
	}
	if cfg.HandoffTTL != 15*time.Minute {
		t.Fatalf("expected default ttl, got %v", cfg.HandoffTTL)
	}
}

func TestLoadReadsDotEnvWithoutOverridingEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("TERMLENS_TEST_FROM_FILE=file\nOLLAMA_MODEL=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("OLLAMA_MODEL", "from-env")
	t.Setenv("TERMLENS_TEST_FROM_FILE", "")
	_ = os.Unsetenv("TERMLENS_TEST_FROM_FILE")

	cfg := Load()
	if cfg.OllamaModel != "from-env" {
		t.Fatalf("environment must win over .env, got %q", cfg.OllamaModel)
	}
	if os.Getenv("TERMLENS_TEST_FROM_FILE") != "file" {
		t.Fatalf("expected .env value to be loaded")
	}
}
