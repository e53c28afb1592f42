package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/nft-metadata-gateway/internal/adapter"
	"github.com/feral-file/nft-metadata-gateway/internal/api/rest"
	"github.com/feral-file/nft-metadata-gateway/internal/api/server"
	"github.com/feral-file/nft-metadata-gateway/internal/bootstrap"
	"github.com/feral-file/nft-metadata-gateway/internal/config"
	"github.com/feral-file/nft-metadata-gateway/internal/logger"
	"github.com/feral-file/nft-metadata-gateway/internal/messaging"
	"github.com/feral-file/nft-metadata-gateway/internal/providers/jetstream"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "nft-metadata-gateway",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting NFT metadata gateway")

	// Resolution events are optional
	publisher := messaging.NewNopPublisher()
	if cfg.NATS.Enabled {
		publisher, err = jetstream.NewPublisher(jetstream.Config{
			URL:            cfg.NATS.URL,
			SubjectPrefix:  cfg.NATS.SubjectPrefix,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream(), adapter.NewJSON())
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		logger.InfoCtx(ctx, "Connected to NATS", zap.String("url", cfg.NATS.URL))
	}
	defer publisher.Close()

	components, err := bootstrap.Build(ctx, cfg.CoreConfig, bootstrap.Dependencies{
		Publisher: publisher,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to build resolution pipeline", zap.Error(err))
	}
	defer components.Close()
	logger.InfoCtx(ctx, "Resolution pipeline ready",
		zap.Int("gateways", len(components.Registry.Candidates())),
		zap.String("store", cfg.Store.Driver),
		zap.Bool("recovery_stage", cfg.Resolution.EnableRecoveryStage),
	)

	handler := rest.NewHandler(rest.Config{
		PublicBaseURL: cfg.PublicBaseURL,
		GatewayCount:  len(components.Registry.Candidates()),
	}, components.Orchestrator, components.Selector, rest.HealthCheckFunc(components.Ping))

	// Create server config
	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		CORSOrigins:  cfg.Server.CORSOrigins,
	}

	// Create and start server
	srv := server.New(serverConfig, handler)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("message", "Server forced to shutdown"))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
