package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/oncodrug-server/internal/api"
	"github.com/oncodrug-server/internal/cache"
	"github.com/oncodrug-server/internal/config"
	"github.com/oncodrug-server/internal/database"
	"github.com/oncodrug-server/internal/logging"
	"github.com/oncodrug-server/internal/repository"
	"github.com/oncodrug-server/internal/service"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open annotation store")
	}
	defer store.Close()

	dialect, err := repository.ParseDialect(store.Driver)
	if err != nil {
		logger.WithError(err).Fatal("Unsupported database driver")
	}
	repo := repository.NewAnnotationRepository(store.SQL, dialect, logger)

	opts := []api.ServerOption{api.WithHealthCheck("storage", repo)}
	var matcherOpts []service.MatcherOption
	if cfg.Cache.Enabled {
		searchCache, err := cache.New(cfg.Cache, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create search cache")
		}
		defer searchCache.Close()

		matcherOpts = append(matcherOpts, service.WithSearchCache(searchCache))
		if cfg.Cache.RedisURL != "" {
			opts = append(opts, api.WithHealthCheck("cache", searchCache))
		}
	}

	matcher := service.NewVariantMatcher(repo, logger, matcherOpts...)
	server := api.NewServer(configManager, matcher, logger, opts...)

	logger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"driver":      store.Driver,
		"cache":       cfg.Cache.Enabled,
	}).Info("Starting oncodrug API server")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}
