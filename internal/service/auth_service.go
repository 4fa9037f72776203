package service

import (
	"context"
	"log/slog"

	"github.com/mybillport/billport/internal/auth"
	"github.com/mybillport/billport/internal/cache"
	"github.com/mybillport/billport/internal/models"
)

// WelcomeSender delivers the post-registration welcome message. The default
// implementation only logs; a mail provider can be swapped in behind it.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, user *models.User) error
}

// LogWelcomeSender is the no-provider fallback.
type LogWelcomeSender struct{}

// SendWelcome implements WelcomeSender.
func (LogWelcomeSender) SendWelcome(_ context.Context, user *models.User) error {
	slog.Info("welcome message queued", "user_id", user.ID, "email", user.Email)
	return nil
}

// AuthService handles registration and login, issuing JWTs on success.
type AuthService struct {
	authenticator auth.Authenticator
	jwt           *auth.JWTManager
	welcome       WelcomeSender
	// welcomeSent suppresses duplicate welcome sends for the cooldown
	// window keyed by email.
	welcomeSent *cache.TTLStore[struct{}]
}

// NewAuthService builds an AuthService. welcome may be nil to disable
// welcome delivery entirely.
func NewAuthService(authenticator auth.Authenticator, jwt *auth.JWTManager, welcome WelcomeSender, welcomeSent *cache.TTLStore[struct{}]) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwt:           jwt,
		welcome:       welcome,
		welcomeSent:   welcomeSent,
	}
}

// AuthResult is what both register and login hand back to the transport.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates the account and issues a token. Welcome delivery is
// best effort and never fails the registration.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*AuthResult, error) {
	user, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, err
	}

	if s.welcome != nil && (s.welcomeSent == nil || s.welcomeSent.SetIfAbsent(user.Email, struct{}{})) {
		if err := s.welcome.SendWelcome(ctx, user); err != nil {
			slog.Warn("welcome delivery failed", "user_id", user.ID, "error", err)
		}
	}

	slog.Info("user registered", "user_id", user.ID)
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
