package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
	"github.com/cruz1171975/amazonenrichment/internal/usecase"
)

// column is one template column that carries an attribute key
type column struct {
	Col int    `json:"col"`
	Key string `json:"key"`
}

func (a *app) flatfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flatfile",
		Short: "Flat-file exports aligned to a category template",
		Long: `Flat-file commands read the template's attribute-key row from --headers:
a JSON/YAML list, a tab-separated row, or one key per line.`,
	}

	var (
		describeHeaders string
		describeFormat  string
	)
	describeCmd := &cobra.Command{
		Use:   "describe",
		Short: "List the template columns that carry attribute keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			headers, err := readHeaders(cmd, describeHeaders)
			if err != nil {
				return err
			}
			var cols []column
			for i, key := range headers {
				if key != "" {
					cols = append(cols, column{Col: i + 1, Key: key})
				}
			}
			if describeFormat == formatJSON {
				return a.writeJSON(cmd, map[string]any{
					"headers":           describeHeaders,
					"columns_with_keys": len(cols),
					"columns":           cols,
				})
			}
			var b strings.Builder
			for _, c := range cols {
				fmt.Fprintf(&b, "%d\t%s\n", c.Col, c.Key)
			}
			return a.write(cmd, b.String())
		},
	}
	describeCmd.Flags().StringVar(&describeHeaders, "headers", "", "template attribute-key row")
	describeCmd.Flags().StringVar(&describeFormat, "format", formatText, "output format (text, json)")
	_ = describeCmd.MarkFlagRequired("headers")

	var (
		headersPath       string
		factsPath         string
		size              string
		format            string
		allowNoncompliant bool
		overrides         exportOptions
	)
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a TSV/CSV row aligned to the template headers",
		Long:  `Generates a listing from --facts and writes the header row plus one data row. Listings with hard findings are refused unless --allow-noncompliant is set.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			headers, err := readHeaders(cmd, headersPath)
			if err != nil {
				return err
			}
			doc, err := loadDocument(cmd, factsPath)
			if err != nil {
				return err
			}
			listing, err := a.listingService().Generate(doc, domain.GenerateOptions{Size: size})
			if err != nil {
				return err
			}
			facts, err := domain.FactsFromAny(doc)
			if err != nil {
				return err
			}

			keys, row, err := a.exportService(overrides).FlatFileRow(headers, facts, listing, allowNoncompliant)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := usecase.WriteFlatFile(&buf, domain.FlatFile{Headers: keys, Rows: [][]string{row}}, format); err != nil {
				return err
			}
			return a.write(cmd, buf.String())
		},
	}
	generateCmd.Flags().StringVar(&headersPath, "headers", "", "template attribute-key row")
	generateCmd.Flags().StringVar(&factsPath, "facts", "", "facts record path (JSON or YAML)")
	generateCmd.Flags().StringVar(&size, "size", "", "preferred size for listing and size fields")
	generateCmd.Flags().StringVar(&format, "format", usecase.FormatTSV, "output format (tsv, csv)")
	generateCmd.Flags().BoolVar(&allowNoncompliant, "allow-noncompliant", false, "export even if the compliance scan fails")
	generateCmd.Flags().StringVar(&overrides.productType, "product-type", "", "product type (default from configuration)")
	generateCmd.Flags().StringVar(&overrides.marketplaceID, "marketplace-id", "", "marketplace id (default from configuration)")
	generateCmd.Flags().StringVar(&overrides.recordAction, "record-action", "", "record action (default from configuration)")
	generateCmd.Flags().IntVar(&overrides.keywordMaxBytesEach, "generic-keyword-max-bytes-each", 0, "byte limit per generic keyword column")
	_ = generateCmd.MarkFlagRequired("headers")
	_ = generateCmd.MarkFlagRequired("facts")

	cmd.AddCommand(describeCmd, generateCmd)
	return cmd
}

// readHeaders reads the template's attribute-key row. Empty keys are kept so
// column numbers stay aligned with the template.
func readHeaders(cmd *cobra.Command, path string) ([]string, error) {
	if isStructured(path) {
		doc, err := loadDocument(cmd, path)
		if err != nil {
			return nil, err
		}
		list, ok := doc.([]any)
		if !ok {
			return nil, fmt.Errorf("%s: expected a list of column keys", path)
		}
		headers := make([]string, len(list))
		for i, item := range list {
			headers[i] = usecase.CleanAny(item)
		}
		return headers, nil
	}

	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimRight(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	first, _, _ := strings.Cut(text, "\n")
	var fields []string
	if strings.Contains(first, "\t") {
		fields = strings.Split(first, "\t")
	} else {
		fields = strings.Split(text, "\n")
	}
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = strings.TrimSpace(f)
	}
	return headers, nil
}
