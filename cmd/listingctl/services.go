package main

import (
	"context"
	"fmt"

	"github.com/cruz1171975/amazonenrichment/internal/infrastructure/llm"
	"github.com/cruz1171975/amazonenrichment/internal/usecase"
)

func (a *app) limits() usecase.ListingLimits {
	return usecase.ListingLimits{
		TitleChars:        a.cfg.Listing.TitleCharLimit,
		BulletChars:       a.cfg.Listing.BulletCharLimit,
		DescriptionChars:  a.cfg.Listing.DescriptionCharLimit,
		BackendTermsBytes: a.cfg.Listing.BackendTermsByteLimit,
	}
}

func (a *app) listingService() *usecase.ListingService {
	return usecase.NewListingService(nil, usecase.ListingServiceConfig{
		Limits:           a.limits(),
		DefaultBrand:     a.cfg.Listing.DefaultBrand,
		BatchConcurrency: a.cfg.Listing.BatchConcurrency,
	}, a.logger)
}

// exportOptions override the configured export settings when non-zero
type exportOptions struct {
	productType         string
	marketplaceID       string
	recordAction        string
	keywordMaxBytesEach int
}

func (a *app) exportService(opts exportOptions) *usecase.ExportService {
	cfg := usecase.ExportConfig{
		MarketplaceID:              a.cfg.Export.MarketplaceID,
		LanguageTag:                a.cfg.Export.LanguageTag,
		ProductType:                a.cfg.Export.ProductType,
		RecordAction:               a.cfg.Export.RecordAction,
		GenericKeywordFields:       a.cfg.Listing.GenericKeywordFields,
		GenericKeywordMaxBytesEach: a.cfg.Listing.GenericKeywordMaxBytesEach,
		DefaultBrand:               a.cfg.Listing.DefaultBrand,
	}
	if opts.productType != "" {
		cfg.ProductType = opts.productType
	}
	if opts.marketplaceID != "" {
		cfg.MarketplaceID = opts.marketplaceID
	}
	if opts.recordAction != "" {
		cfg.RecordAction = opts.recordAction
	}
	if opts.keywordMaxBytesEach > 0 {
		cfg.GenericKeywordMaxBytesEach = opts.keywordMaxBytesEach
	}
	return usecase.NewExportService(nil, cfg)
}

// rewriteOptions select the rewrite backend for a single command
type rewriteOptions struct {
	provider    string
	model       string
	maxAttempts int
}

// rewriteService returns nil when neither the flags nor the configuration name a provider
func (a *app) rewriteService(ctx context.Context, opts rewriteOptions) (*usecase.RewriteService, error) {
	provider := opts.provider
	if provider == "" {
		provider = a.cfg.Rewrite.Provider
	}
	if provider == "" {
		return nil, nil
	}
	model := opts.model
	if model == "" {
		model = a.cfg.Rewrite.Model
	}
	maxAttempts := opts.maxAttempts
	if maxAttempts <= 0 {
		maxAttempts = a.cfg.Rewrite.MaxAttempts
	}

	backend, err := llm.NewBackend(ctx, llm.Config{
		Provider:          provider,
		Model:             model,
		APIKey:            a.cfg.Rewrite.APIKey,
		BaseURL:           a.cfg.Rewrite.BaseURL,
		RequestsPerMinute: a.cfg.Rewrite.RequestsPerMinute,
		Burst:             a.cfg.Rewrite.Burst,
		Timeout:           a.cfg.Rewrite.Timeout,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create rewrite backend: %w", err)
	}

	return usecase.NewRewriteService(backend, nil, nil, usecase.RewriteServiceConfig{
		Model:       model,
		MaxAttempts: maxAttempts,
		Limits:      a.limits(),
	}, a.logger), nil
}
