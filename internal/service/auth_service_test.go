package service

import (
	"context"
	"testing"
	"time"

	"github.com/mybillport/billport/internal/auth"
	"github.com/mybillport/billport/internal/cache"
	"github.com/mybillport/billport/internal/models"
)

type stubAuthenticator struct{}

func (stubAuthenticator) Register(_ context.Context, email, displayName, _ string) (*models.User, error) {
	return models.NewUser(email, displayName, "hash"), nil
}

func (stubAuthenticator) Authenticate(_ context.Context, email, _ string) (*models.User, error) {
	return models.NewUser(email, "", "hash"), nil
}

func (stubAuthenticator) ValidateCredential(string) error { return nil }

type countingWelcome struct {
	sent int
}

func (c *countingWelcome) SendWelcome(context.Context, *models.User) error {
	c.sent++
	return nil
}

func TestRegisterSendsWelcomeOncePerCooldown(t *testing.T) {
	welcome := &countingWelcome{}
	svc := NewAuthService(
		stubAuthenticator{},
		auth.NewJWTManager("secret", time.Hour),
		welcome,
		cache.NewTTLStore[struct{}](time.Hour),
	)

	result, err := svc.Register(context.Background(), "a@example.com", "A", "password123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if result.Token == "" {
		t.Error("register returned empty token")
	}
	if welcome.sent != 1 {
		t.Fatalf("welcome sent %d times, want 1", welcome.sent)
	}

	// The stub accepts re-registration; the cooldown still suppresses a
	// second welcome for the same address.
	if _, err := svc.Register(context.Background(), "a@example.com", "A", "password123"); err != nil {
		t.Fatalf("second register failed: %v", err)
	}
	if welcome.sent != 1 {
		t.Errorf("welcome sent %d times after re-register, want 1", welcome.sent)
	}

	if _, err := svc.Register(context.Background(), "b@example.com", "B", "password123"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if welcome.sent != 2 {
		t.Errorf("welcome sent %d times for two addresses, want 2", welcome.sent)
	}
}
