package config

import (
	"testing"
	"time"

	"github.com/mybillport/billport/internal/duestatus"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.HTTP.Port)
	}
	if cfg.DueSoonWindowDays != duestatus.DefaultWindowDays {
		t.Errorf("due-soon window = %d, want default %d", cfg.DueSoonWindowDays, duestatus.DefaultWindowDays)
	}
	if cfg.AI.Enabled() {
		t.Error("AI should be disabled without AI_API_KEY")
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Error("expected error without JWT_SECRET")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("DUE_SOON_WINDOW_DAYS", "3")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("AI_API_KEY", "key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.HTTP.Port)
	}
	if cfg.DueSoonWindowDays != 3 {
		t.Errorf("due-soon window = %d, want 3", cfg.DueSoonWindowDays)
	}
	if cfg.Auth.TokenDuration != 2*time.Hour {
		t.Errorf("token duration = %v, want 2h", cfg.Auth.TokenDuration)
	}
	if !cfg.AI.Enabled() {
		t.Error("AI should be enabled with AI_API_KEY")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "70000")
		if _, err := Load(); err == nil {
			t.Error("expected error for out-of-range port")
		}
	})

	t.Run("bad window", func(t *testing.T) {
		t.Setenv("DUE_SOON_WINDOW_DAYS", "-2")
		if _, err := Load(); err == nil {
			t.Error("expected error for negative window")
		}
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("TOKEN_TTL", "soon")
		if _, err := Load(); err == nil {
			t.Error("expected error for unparsable duration")
		}
	})
}
