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

	"go.uber.org/zap"

	"github.com/cruz1171975/amazonenrichment/config"
	httpDelivery "github.com/cruz1171975/amazonenrichment/internal/delivery/http"
	"github.com/cruz1171975/amazonenrichment/internal/infrastructure/cache"
	"github.com/cruz1171975/amazonenrichment/internal/infrastructure/llm"
	"github.com/cruz1171975/amazonenrichment/internal/logging"
	"github.com/cruz1171975/amazonenrichment/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "amazonenrichment: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development || cfg.Server.Environment == "development")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting amazonenrichment",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache(cfg.Cache.CleanupInterval)
	defer memoryCache.Close()

	listings := usecase.NewListingService(nil, usecase.ListingServiceConfig{
		Limits:           listingLimits(cfg),
		DefaultBrand:     cfg.Listing.DefaultBrand,
		BatchConcurrency: cfg.Listing.BatchConcurrency,
	}, logger)
	scanner := listings.Scanner()
	logger.Info("compliance catalog loaded",
		zap.String("version", scanner.Catalog().Version()),
		zap.Int("terms", scanner.Catalog().Len()))

	rewriter, err := newRewriter(ctx, cfg, memoryCache, listings, logger)
	if err != nil {
		return err
	}

	handler := httpDelivery.NewHandler(httpDelivery.Services{
		Listings: listings,
		Keywords: usecase.NewKeywordService(scanner),
		Exports: usecase.NewExportService(scanner, usecase.ExportConfig{
			MarketplaceID:              cfg.Export.MarketplaceID,
			LanguageTag:                cfg.Export.LanguageTag,
			ProductType:                cfg.Export.ProductType,
			RecordAction:               cfg.Export.RecordAction,
			GenericKeywordFields:       cfg.Listing.GenericKeywordFields,
			GenericKeywordMaxBytesEach: cfg.Listing.GenericKeywordMaxBytesEach,
			DefaultBrand:               cfg.Listing.DefaultBrand,
		}),
		Rewriter: rewriter,
		Cache:    memoryCache,
	}, logger)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func listingLimits(cfg *config.Config) usecase.ListingLimits {
	return usecase.ListingLimits{
		TitleChars:        cfg.Listing.TitleCharLimit,
		BulletChars:       cfg.Listing.BulletCharLimit,
		DescriptionChars:  cfg.Listing.DescriptionCharLimit,
		BackendTermsBytes: cfg.Listing.BackendTermsByteLimit,
	}
}

// newRewriter builds the rewrite service, or returns nil when no provider is configured
func newRewriter(ctx context.Context, cfg *config.Config, c *cache.MemoryCache, listings *usecase.ListingService, logger *zap.Logger) (*usecase.RewriteService, error) {
	if cfg.Rewrite.Provider == "" {
		logger.Info("rewrite disabled: no provider configured")
		return nil, nil
	}

	backend, err := llm.NewBackend(ctx, llm.Config{
		Provider:          cfg.Rewrite.Provider,
		Model:             cfg.Rewrite.Model,
		APIKey:            cfg.Rewrite.APIKey,
		BaseURL:           cfg.Rewrite.BaseURL,
		RequestsPerMinute: cfg.Rewrite.RequestsPerMinute,
		Burst:             cfg.Rewrite.Burst,
		Timeout:           cfg.Rewrite.Timeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create rewrite backend: %w", err)
	}

	// Enable debug mode in development environment
	if gemini, ok := backend.(*llm.GeminiBackend); ok && cfg.Server.Environment == "development" {
		gemini.SetDebug(true)
		logger.Info("gemini client debug mode enabled")
	}

	logger.Info("rewrite enabled",
		zap.String("provider", backend.Name()),
		zap.String("model", cfg.Rewrite.Model),
		zap.Int("max_attempts", cfg.Rewrite.MaxAttempts),
		zap.Duration("cache_ttl", cfg.Cache.TTL))

	return usecase.NewRewriteService(backend, c, listings.Scanner(), usecase.RewriteServiceConfig{
		Model:       cfg.Rewrite.Model,
		MaxAttempts: cfg.Rewrite.MaxAttempts,
		CacheTTL:    cfg.Cache.TTL,
		Limits:      listings.Builder().Limits(),
	}, logger), nil
}
