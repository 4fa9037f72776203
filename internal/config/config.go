// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mybillport/billport/internal/duestatus"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP HTTPConfig
	DB   DBConfig
	Auth AuthConfig
	AI   AIConfig

	// DueSoonWindowDays is the single due-soon window used everywhere a
	// bill's urgency is classified. The dashboard and reminder views read
	// the same value; there is no per-view constant.
	DueSoonWindowDays int

	// SplitSessionTTL bounds how long an unfinished split session survives.
	SplitSessionTTL time.Duration

	// WelcomeEmailCooldown is the per-address rate limit for welcome emails.
	WelcomeEmailCooldown time.Duration
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DBConfig describes the SQLite database location.
type DBConfig struct {
	Path string
}

// AuthConfig carries JWT settings.
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
}

// AIConfig describes the optional generative-text service. Enabled only
// when an API key is present; everything degrades to the deterministic
// analyzer without one.
type AIConfig struct {
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// Enabled reports whether the AI path is configured.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

const (
	defaultHost              = "0.0.0.0"
	defaultPort              = 8080
	defaultReadTimeout       = 10 * time.Second
	defaultWriteTimeout      = 15 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
	defaultDBPath            = "./data/billport.db"
	defaultTokenDuration     = 24 * time.Hour
	defaultSplitSessionTTL   = 24 * time.Hour
	defaultWelcomeCooldown   = time.Hour
	defaultAIEndpoint        = "https://api.anthropic.com"
	defaultAIModel           = "claude-3-5-haiku-latest"
	defaultAITimeout         = 20 * time.Second
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Host:            valueOrDefault("SERVER_HOST", defaultHost),
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		DB: DBConfig{
			Path: valueOrDefault("DB_PATH", defaultDBPath),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			TokenDuration: defaultTokenDuration,
		},
		AI: AIConfig{
			APIKey:   os.Getenv("AI_API_KEY"),
			Endpoint: valueOrDefault("AI_ENDPOINT", defaultAIEndpoint),
			Model:    valueOrDefault("AI_MODEL", defaultAIModel),
			Timeout:  defaultAITimeout,
		},
		DueSoonWindowDays:    duestatus.DefaultWindowDays,
		SplitSessionTTL:      defaultSplitSessionTTL,
		WelcomeEmailCooldown: defaultWelcomeCooldown,
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	if v := os.Getenv("DUE_SOON_WINDOW_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			return Config{}, fmt.Errorf("invalid DUE_SOON_WINDOW_DAYS %q", v)
		}
		cfg.DueSoonWindowDays = days
	}

	for _, d := range []struct {
		env    string
		target *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"TOKEN_TTL", &cfg.Auth.TokenDuration},
		{"AI_TIMEOUT", &cfg.AI.Timeout},
		{"SPLIT_SESSION_TTL", &cfg.SplitSessionTTL},
		{"WELCOME_EMAIL_COOLDOWN", &cfg.WelcomeEmailCooldown},
	} {
		if v := os.Getenv(d.env); v != "" {
			dur, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", d.env, err)
			}
			*d.target = dur
		}
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
