package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mybillport/billport/internal/auth"
	"github.com/mybillport/billport/internal/cache"
	"github.com/mybillport/billport/internal/config"
	"github.com/mybillport/billport/internal/insights"
	"github.com/mybillport/billport/internal/metrics"
	"github.com/mybillport/billport/internal/server"
	"github.com/mybillport/billport/internal/service"
	"github.com/mybillport/billport/internal/split"
	"github.com/mybillport/billport/internal/storage/sqlite"
	"github.com/mybillport/billport/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DB.Path, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	m := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	var analyzer service.InsightAnalyzer = service.DeterministicAnalyzer{}
	if cfg.AI.Enabled() {
		client := insights.NewAnthropicClient(cfg.AI.Endpoint, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout)
		analyzer = insights.NewAIAnalyzer(client)
		slog.Info("ai insights enabled", "model", cfg.AI.Model)
	}

	welcomeSent := cache.NewTTLStore[struct{}](cfg.WelcomeEmailCooldown)
	splitSessions := cache.NewTTLStore[*split.SplitBill](cfg.SplitSessionTTL)

	authService := service.NewAuthService(authenticator, jwtManager, service.LogWelcomeSender{}, welcomeSent)
	billService := service.NewBillService(store, analyzer, cfg.AI.Enabled(), cfg.DueSoonWindowDays, m)
	scanService := service.NewScanService(m)
	splitService := service.NewSplitService(splitSessions)

	handler := server.NewHandler(authService, billService, scanService, splitService)
	router := server.NewRouter(handler, jwtManager, m)
	srv := server.New(cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		slog.Info("received shutdown signal", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}
	slog.Info("server stopped")
}
