package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cruz1171975/amazonenrichment/internal/compliance"
	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

// grantFlags name where the grade-term licence of a scan comes from
type grantFlags struct {
	factsPath   string
	productName string
}

func (g *grantFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&g.factsPath, "facts", "", "facts record whose product_name licenses grade terms")
	cmd.Flags().StringVar(&g.productName, "allow-grade-terms-from-product-name", "", "product name that licenses grade terms found in it")
}

// resolve returns the licensing product name. An explicit name wins over --facts.
func (g *grantFlags) resolve(cmd *cobra.Command) (string, error) {
	if name := strings.TrimSpace(g.productName); name != "" {
		return name, nil
	}
	if g.factsPath == "" {
		return "", nil
	}
	doc, err := loadDocument(cmd, g.factsPath)
	if err != nil {
		return "", err
	}
	return productNameOf(doc), nil
}

func (a *app) complianceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compliance",
		Short: "Compliance scans",
	}

	var (
		format string
		text   string
		grant  grantFlags
	)
	scanCmd := &cobra.Command{
		Use:   "scan [input]",
		Short: "Scan text or a listing document for compliance risks",
		Long: `Scans a listing document (.json, .yaml) field by field, or any other file
(or --text) as free text. Exits with status 2 when a hard finding is reported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && text == "" {
				return errors.New("an input file or --text is required")
			}

			productName, err := grant.resolve(cmd)
			if err != nil {
				return err
			}
			cfg := domain.ScanConfig{AllowGradeTermsFromProductName: productName}
			scanner := compliance.DefaultScanner()

			var findings []domain.Finding
			switch {
			case len(args) == 0:
				findings = scanner.ScanText(text, cfg, "text")
			case isStructured(args[0]):
				payload, err := loadValue(cmd, args[0])
				if err != nil {
					return err
				}
				findings = scanner.ScanListingFields(payload, cfg)
			default:
				data, err := readInput(cmd, args[0])
				if err != nil {
					return err
				}
				findings = scanner.ScanText(string(data), cfg, "text")
			}
			if findings == nil {
				findings = []domain.Finding{}
			}

			a.logger.Debug("scan complete",
				zap.String("grade_licence", productName),
				zap.Int("findings", len(findings)))

			if format == formatJSON {
				err = a.writeJSON(cmd, findings)
			} else {
				err = a.write(cmd, formatFindings(findings))
			}
			if err != nil {
				return err
			}

			if domain.HasHardFinding(findings) {
				return findingsExit("hard compliance findings")
			}
			return nil
		},
	}
	scanCmd.Flags().StringVar(&format, "format", formatText, "output format (text, json)")
	scanCmd.Flags().StringVar(&text, "text", "", "scan this text instead of a file")
	grant.register(scanCmd)

	cmd.AddCommand(scanCmd)
	return cmd
}

func formatFindings(findings []domain.Finding) string {
	var b strings.Builder
	for _, f := range findings {
		fmt.Fprintf(&b, "%s [%s] %s: %s (match: %q)\n",
			strings.ToUpper(string(f.Severity)), f.RuleID, f.Field, f.Message, f.Match)
	}
	return b.String()
}
