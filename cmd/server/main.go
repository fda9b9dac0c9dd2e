package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	echoapi "go.pilab.hu/mcportal/api/echo"
	"go.pilab.hu/mcportal/config"
	"go.pilab.hu/mcportal/internal/app"
	"go.pilab.hu/mcportal/internal/audit"
	"go.pilab.hu/mcportal/internal/auth"
	"go.pilab.hu/mcportal/internal/mcstatus"
	"go.pilab.hu/mcportal/internal/metrics"
	"go.pilab.hu/mcportal/internal/server"
	"go.pilab.hu/mcportal/internal/telemetry"
	"go.pilab.hu/mcportal/log"
	"go.pilab.hu/mcportal/services"
	"go.pilab.hu/mcportal/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		stdLog := zerolog.New(os.Stdout).With().Timestamp().Logger()
		stdLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLogger := log.Setup(log.ParseLevel(cfg.LogLevel), cfg.LogPretty)
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		appLogger.Fatal(ctx, "Invalid configuration", err)
	}

	appLogger.Info(ctx, "Starting mcportal server...", map[string]interface{}{
		"http_port":       cfg.HTTPPort,
		"storage_backend": cfg.StorageBackend,
		"mongo_db_name":   cfg.MongoDBName,
		"mc_server_addr":  cfg.MCServerAddr,
		"log_level":       cfg.LogLevel,
		"tracing":         cfg.TracingEnabled,
	})

	shutdownTracer, err := tracing.InitTracerProvider(cfg.OtelServiceName, cfg.TracingEnabled)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize TracerProvider", err)
	}

	registry := metrics.NewRegistry()
	collector := metrics.NewCollector(registry)

	shutdownMeter, err := telemetry.InitMeterProvider(registry, cfg.OtelServiceName)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize MeterProvider", err)
	}

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to open storage", err)
	}

	profileCache, err := app.NewProfileCache(ctx, cfg)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize identity cache", err)
	}

	sessions, err := auth.NewSessionIssuer(cfg.JWTSecret)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize session issuer", err)
	}

	svcs := services.NewServices(storage.Repos, services.Dependencies{
		Identity:   app.NewIdentityProvider(cfg, profileCache),
		Sessions:   sessions,
		Pinger:     mcstatus.NewPinger(cfg.MCStatusTimeout),
		ServerAddr: cfg.MCServerAddr,
		Metrics:    collector,
		Audit:      audit.New(os.Stdout),
	})

	if err := svcs.Auth.EnsureBootstrapAdmin(ctx, cfg.BootstrapAdmin); err != nil {
		appLogger.Error(ctx, "Failed to bootstrap admin user", err, map[string]interface{}{
			"username": cfg.BootstrapAdmin,
		})
	}

	httpServer := server.NewHTTPServer(cfg, appLogger, echoapi.NewPortalAPI(svcs), storage.Health, registry)
	go func() {
		appLogger.Info(ctx, fmt.Sprintf("HTTP server listening on port %s", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal(ctx, "Failed to start HTTP server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit

	appLogger.Info(ctx, fmt.Sprintf("Received signal: %v. Shutting down server...", receivedSignal))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "HTTP server shutdown error", err)
	}
	if err := profileCache.Close(); err != nil {
		appLogger.Error(shutdownCtx, "Identity cache close error", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "TracerProvider shutdown error", err)
	}
	if err := shutdownMeter(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "MeterProvider shutdown error", err)
	}
	storage.Close(shutdownCtx)

	appLogger.Info(shutdownCtx, "Server gracefully stopped.")
}
