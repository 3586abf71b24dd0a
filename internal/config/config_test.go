package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.Addr != ":8000" {
		t.Fatalf("unexpected addr: %q", cfg.Addr)
	}
	if cfg.AIProvider != "gemini" {
		t.Fatalf("unexpected provider: %q", cfg.AIProvider)
	}
	if cfg.ChatContextWindowSize != 5 || cfg.ChatHistoryKeep != 100 {
		t.Fatalf("unexpected chat defaults: window=%d keep=%d", cfg.ChatContextWindowSize, cfg.ChatHistoryKeep)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("AI_PROVIDER", "ollama")
	t.Setenv("CHAT_CONTEXT_WINDOW_SIZE", "10")
	t.Setenv("CHAT_RATE_PER_MINUTE", "not-a-number")

	cfg := Load()
	if cfg.Addr != ":9000" {
		t.Fatalf("addr override ignored: %q", cfg.Addr)
	}
	if cfg.AIProvider != "ollama" {
		t.Fatalf("provider override ignored: %q", cfg.AIProvider)
	}
	if cfg.ChatContextWindowSize != 10 {
		t.Fatalf("window override ignored: %d", cfg.ChatContextWindowSize)
	}
	if cfg.ChatRatePerMinute != 15 {
		t.Fatalf("bad int should fall back to default, got %d", cfg.ChatRatePerMinute)
	}
}
