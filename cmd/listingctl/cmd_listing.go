package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
	"github.com/cruz1171975/amazonenrichment/internal/usecase"
)

func (a *app) listingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listing",
		Short: "Generate and render listing drafts",
	}
	cmd.AddCommand(a.listingGenerateCmd(), a.listingBatchCmd(), a.listingRenderCmd(), a.listingPatchCmd())
	return cmd
}

func (a *app) listingGenerateCmd() *cobra.Command {
	var (
		factsPath string
		opts      domain.GenerateOptions
		rewrite   rewriteOptions
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a listing draft from a facts record",
		Long: `Builds a listing draft from a facts record and scans it. With a rewrite
provider the draft is rewritten and re-scanned; rejected rewrites fall back to
the generated copy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(cmd, factsPath)
			if err != nil {
				return err
			}
			listing, err := a.listingService().Generate(doc, opts)
			if err != nil {
				return err
			}

			rewriter, err := a.rewriteService(cmd.Context(), rewrite)
			if err != nil {
				return err
			}
			if rewriter != nil {
				facts, err := domain.FactsFromAny(doc)
				if err != nil {
					return err
				}
				debug := listing.Debug
				listing, err = rewriter.Rewrite(cmd.Context(), facts, listing)
				if err != nil {
					return err
				}
				listing.Debug = debug
			}

			a.logger.Info("listing generated",
				zap.String("sku", listing.Metadata.SKU),
				zap.String("status", listing.ComplianceStatus))
			return a.writeJSON(cmd, listing)
		},
	}
	cmd.Flags().StringVar(&factsPath, "facts", "", "facts record path (JSON or YAML, - for stdin)")
	cmd.Flags().StringVar(&opts.Size, "size", "", "preferred size, e.g. \"1 Gallon\"")
	cmd.Flags().BoolVar(&opts.HTMLDescription, "html-description", false, "generate an HTML description")
	cmd.Flags().BoolVar(&opts.IncludeDebug, "include-debug", false, "attach facts issues and the raw facts record")
	cmd.Flags().StringVar(&rewrite.provider, "rewrite-provider", "", "rewrite backend (gemini, google, mock, test)")
	cmd.Flags().StringVar(&rewrite.model, "rewrite-model", "", "rewrite model name (default from configuration)")
	cmd.Flags().IntVar(&rewrite.maxAttempts, "rewrite-max-attempts", 0, "rewrite attempts before falling back (default from configuration)")
	_ = cmd.MarkFlagRequired("facts")
	return cmd
}

// batchItem is one record of a batch output
type batchItem struct {
	Source  string               `json:"source"`
	Listing *domain.ListingDraft `json:"listing,omitempty"`
	Error   string               `json:"error,omitempty"`
	Issues  []domain.FactsIssue  `json:"issues,omitempty"`
}

func (a *app) listingBatchCmd() *cobra.Command {
	var opts domain.GenerateOptions
	cmd := &cobra.Command{
		Use:   "batch <facts-file>...",
		Short: "Generate listing drafts for several facts records",
		Long:  `Generates one listing per facts record concurrently. Exits with status 2 when a record is rejected or its listing fails the compliance scan.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := make([]any, len(args))
			for i, path := range args {
				doc, err := loadDocument(cmd, path)
				if err != nil {
					return err
				}
				docs[i] = doc
			}

			results, err := a.listingService().GenerateBatch(cmd.Context(), docs, opts)
			if err != nil {
				return err
			}

			items := make([]batchItem, len(results))
			failed := 0
			for i, r := range results {
				items[i] = batchItem{Source: args[i], Listing: r.Listing}
				if r.Err != nil {
					items[i].Error = r.Err.Error()
					var verr *domain.ValidationError
					if errors.As(r.Err, &verr) {
						items[i].Issues = verr.Issues
					}
					failed++
					continue
				}
				if r.Listing.ComplianceStatus == domain.StatusFail {
					failed++
				}
			}

			if err := a.writeJSON(cmd, items); err != nil {
				return err
			}
			if failed > 0 {
				return findingsExit(fmt.Sprintf("%d of %d record(s) rejected or failing compliance", failed, len(items)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Size, "size", "", "preferred size for every record")
	cmd.Flags().BoolVar(&opts.HTMLDescription, "html-description", false, "generate HTML descriptions")
	return cmd
}

func (a *app) listingRenderCmd() *cobra.Command {
	var listingPath string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a listing draft as markdown-ish text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var listing domain.ListingDraft
			if err := loadInto(cmd, listingPath, &listing); err != nil {
				return err
			}
			text, err := usecase.RenderListing(&listing)
			if err != nil {
				return err
			}
			return a.write(cmd, text)
		},
	}
	cmd.Flags().StringVar(&listingPath, "listing", "", "listing draft path (JSON or YAML)")
	_ = cmd.MarkFlagRequired("listing")
	return cmd
}

func (a *app) listingPatchCmd() *cobra.Command {
	var (
		factsPath   string
		listingPath string
		size        string
		productType string
	)
	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Build a listings item PATCH body",
		Long: `Builds the PATCH body replacing title, bullets, description and generic
keywords. The listing is generated from --facts unless --listing is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if factsPath == "" && listingPath == "" {
				return errors.New("one of --facts or --listing is required")
			}

			var listing *domain.ListingDraft
			if listingPath != "" {
				listing = &domain.ListingDraft{}
				if err := loadInto(cmd, listingPath, listing); err != nil {
					return err
				}
			} else {
				doc, err := loadDocument(cmd, factsPath)
				if err != nil {
					return err
				}
				listing, err = a.listingService().Generate(doc, domain.GenerateOptions{Size: size})
				if err != nil {
					return err
				}
			}

			return a.writeJSON(cmd, a.exportService(exportOptions{}).BuildPatch(listing, productType))
		},
	}
	cmd.Flags().StringVar(&factsPath, "facts", "", "facts record path (JSON or YAML)")
	cmd.Flags().StringVar(&listingPath, "listing", "", "existing listing draft path")
	cmd.Flags().StringVar(&size, "size", "", "preferred size when generating")
	cmd.Flags().StringVar(&productType, "product-type", "", "productType of the request body (omitted when empty)")
	return cmd
}
