package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
	"github.com/cruz1171975/amazonenrichment/internal/usecase"
)

func (a *app) keywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Keyword helpers (suggest, filter)",
	}

	var factsPath string
	suggestCmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest keywords from a facts record",
		Long:  `Derives keyword groups from a facts record and splits them into safe and hard-blocked terms.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(cmd, factsPath)
			if err != nil {
				return err
			}
			facts, err := domain.FactsFromAny(doc)
			if err != nil {
				return err
			}
			return a.writeJSON(cmd, usecase.NewKeywordService(nil).Suggest(facts))
		},
	}
	suggestCmd.Flags().StringVar(&factsPath, "facts", "", "facts record path (JSON or YAML)")
	_ = suggestCmd.MarkFlagRequired("facts")

	var (
		format string
		grant  grantFlags
	)
	filterCmd := &cobra.Command{
		Use:   "filter <keywords-file>",
		Short: "Filter keywords through the compliance scanner",
		Long: `Reads a JSON array of keywords or a text file with one keyword per line.
Exits with status 2 when any keyword is blocked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			terms, err := readKeywords(cmd, args[0])
			if err != nil {
				return err
			}
			productName, err := grant.resolve(cmd)
			if err != nil {
				return err
			}

			safe, blocked := usecase.NewKeywordService(nil).Filter(terms, productName)
			if format == formatJSON {
				err = a.writeJSON(cmd, map[string][]string{"safe": safe, "blocked": blocked})
			} else {
				err = a.write(cmd, strings.Join(safe, "\n"))
			}
			if err != nil {
				return err
			}

			if len(blocked) > 0 {
				return findingsExit(fmt.Sprintf("%d keyword(s) blocked", len(blocked)))
			}
			return nil
		},
	}
	filterCmd.Flags().StringVar(&format, "format", formatText, "output format (text, json)")
	grant.register(filterCmd)

	cmd.AddCommand(suggestCmd, filterCmd)
	return cmd
}

// readKeywords reads a JSON/YAML list of terms or one term per line.
// Non-string list items are rendered as text.
func readKeywords(cmd *cobra.Command, path string) ([]string, error) {
	if isStructured(path) {
		doc, err := loadDocument(cmd, path)
		if err != nil {
			return nil, err
		}
		list, ok := doc.([]any)
		if !ok {
			return nil, fmt.Errorf("%s: expected a list of keywords", path)
		}
		terms := make([]string, 0, len(list))
		for _, item := range list {
			terms = append(terms, fmt.Sprint(item))
		}
		return terms, nil
	}

	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	var terms []string
	for _, line := range strings.Split(string(data), "\n") {
		if t := strings.TrimSpace(line); t != "" {
			terms = append(terms, t)
		}
	}
	return terms, nil
}
