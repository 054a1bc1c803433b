package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("EXPLANATION_POLICY", "")
	t.Setenv("RATE_LIMIT_GENERATE", "")
	t.Setenv("EVENT_QUEUE_SIZE", "")
	t.Setenv("EVENT_EXCHANGE", "")

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.ExplanationPolicy != "incorrect" {
		t.Errorf("ExplanationPolicy = %q, want incorrect", cfg.ExplanationPolicy)
	}
	if cfg.GenerateRateLimit.Requests != 5 || cfg.GenerateRateLimit.Window != time.Minute {
		t.Errorf("GenerateRateLimit = %+v", cfg.GenerateRateLimit)
	}
	if cfg.EventQueueSize != 256 || cfg.EventExchange != "quiz.events" {
		t.Errorf("events = %d %q", cfg.EventQueueSize, cfg.EventExchange)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "15")
	t.Setenv("RATE_LIMIT_REVIEW", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.GenerationTimeout != 15*time.Second {
		t.Errorf("GenerationTimeout = %v", cfg.GenerationTimeout)
	}
	if cfg.ReviewRateLimit.Requests != 10 {
		t.Errorf("invalid int should fall back, got %d", cfg.ReviewRateLimit.Requests)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestCacheKeysNormalizeSubject(t *testing.T) {
	a := CacheKey.SubjectVerdictKey("  World   History ")
	b := CacheKey.SubjectVerdictKey("world history")
	if a != b {
		t.Errorf("keys differ: %q vs %q", a, b)
	}
	if got := CacheKey.SubSubjectVerdictKey("Math", "Linear Algebra"); got != "verdict:subject:math:sub:linear algebra" {
		t.Errorf("SubSubjectVerdictKey = %q", got)
	}
}
