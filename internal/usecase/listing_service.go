package usecase

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cruz1171975/amazonenrichment/internal/compliance"
	"github.com/cruz1171975/amazonenrichment/internal/domain"
	"github.com/cruz1171975/amazonenrichment/internal/logging"
)

// GeneratorName is recorded in the metadata of every generated listing
const GeneratorName = "amazonenrichment"

// ListingState is a step of listing generation
type ListingState string

const (
	StateValidating ListingState = "validating"
	StateBuilding   ListingState = "building"
	StateScanning   ListingState = "scanning"
	StateDone       ListingState = "done"
	StateRejected   ListingState = "rejected"
)

// ListingServiceConfig holds configuration for the listing service
type ListingServiceConfig struct {
	Limits           ListingLimits
	DefaultBrand     string
	BatchConcurrency int
}

// ListingService turns facts records into compliance-scanned listing drafts
type ListingService struct {
	builder          *FieldBuilder
	scanner          *compliance.Scanner
	batchConcurrency int
	logger           *zap.Logger
}

// NewListingService creates a new listing service with dependencies
func NewListingService(scanner *compliance.Scanner, config ListingServiceConfig, logger *zap.Logger) *ListingService {
	if scanner == nil {
		scanner = compliance.DefaultScanner()
	}
	concurrency := config.BatchConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &ListingService{
		builder:          NewFieldBuilder(scanner, config.Limits, config.DefaultBrand),
		scanner:          scanner,
		batchConcurrency: concurrency,
		logger:           logging.OrNop(logger),
	}
}

// Builder exposes the field builder the service uses
func (s *ListingService) Builder() *FieldBuilder {
	return s.builder
}

// Scanner exposes the compliance scanner the service uses
func (s *ListingService) Scanner() *compliance.Scanner {
	return s.scanner
}

// Generate builds a listing from a decoded facts document.
// Flow: validating -> building -> scanning -> done, or rejected when a
// required field is missing. A rejected record yields a *domain.ValidationError.
func (s *ListingService) Generate(doc any, opts domain.GenerateOptions) (*domain.ListingDraft, error) {
	s.transition(StateValidating)
	issues := ValidateFacts(doc)
	if blocking := domain.BlockingIssues(issues); len(blocking) > 0 {
		s.transition(StateRejected, zap.Int("issues", len(blocking)))
		return nil, &domain.ValidationError{Issues: blocking}
	}
	facts, err := domain.FactsFromAny(doc)
	if err != nil {
		s.transition(StateRejected)
		return nil, err
	}

	s.transition(StateBuilding)
	productName := Clean(facts.Text("product_name"))
	size := PickSize(facts, opts.Size)
	draft := &domain.ListingDraft{
		Title:              s.builder.Title(facts, size),
		Bullets:            s.builder.Bullets(facts, size),
		Description:        s.builder.Description(facts, size, opts.HTMLDescription),
		BackendSearchTerms: s.builder.BackendSearchTerms(facts),
		APlusMarkdown:      s.builder.APlusMarkdown(facts),
		APlus:              s.builder.APlus(facts),
		Metadata: domain.ListingMetadata{
			SKU:         Clean(facts.Text("sku")),
			ASIN:        Clean(facts.Text("asin")),
			ProductName: productName,
			Size:        size,
			Generator:   GeneratorName,
		},
	}

	s.transition(StateScanning)
	s.applyScan(draft, productName)

	if opts.IncludeDebug {
		if issues == nil {
			issues = []domain.FactsIssue{}
		}
		draft.Debug = &domain.ListingDebug{FactsIssues: issues, Facts: facts}
	}

	s.transition(StateDone,
		zap.String("sku", draft.Metadata.SKU),
		zap.String("status", draft.ComplianceStatus),
		zap.Int("findings", len(draft.ComplianceFindings)))
	return draft, nil
}

// applyScan attaches findings and status to a draft
func (s *ListingService) applyScan(draft *domain.ListingDraft, productName string) {
	findings := s.scanner.ScanListing(draft, domain.ScanConfig{AllowGradeTermsFromProductName: productName})
	if findings == nil {
		findings = []domain.Finding{}
	}
	draft.ComplianceFindings = findings
	draft.ComplianceStatus = domain.StatusFor(findings)
}

func (s *ListingService) transition(state ListingState, fields ...zap.Field) {
	s.logger.Debug("listing generation", append([]zap.Field{zap.String("state", string(state))}, fields...)...)
}

// BatchResult is the outcome of one record of a batch
type BatchResult struct {
	Listing *domain.ListingDraft
	Err     error
}

// GenerateBatch generates listings for independent records concurrently.
// Results keep input order; a failing record does not affect the others.
// The returned error is non-nil only when ctx is cancelled.
func (s *ListingService) GenerateBatch(ctx context.Context, docs []any, opts domain.GenerateOptions) ([]BatchResult, error) {
	results := make([]BatchResult, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			listing, err := s.Generate(doc, opts)
			results[i] = BatchResult{Listing: listing, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("batch generated", zap.Int("records", len(docs)))
	return results, nil
}
