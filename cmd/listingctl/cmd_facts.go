package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
	"github.com/cruz1171975/amazonenrichment/internal/usecase"
)

func (a *app) factsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Facts record helpers",
	}

	var initFormat string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Print an empty facts record template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			template := usecase.FactsTemplate()
			switch initFormat {
			case formatJSON:
				return a.writeJSON(cmd, template)
			case formatYAML:
				text, err := encodeYAML(template)
				if err != nil {
					return fmt.Errorf("failed to encode template: %w", err)
				}
				return a.write(cmd, text)
			default:
				return fmt.Errorf("unknown format %q (expected json or yaml)", initFormat)
			}
		},
	}
	initCmd.Flags().StringVar(&initFormat, "format", formatJSON, "output format (json, yaml)")

	var validateFormat string
	validateCmd := &cobra.Command{
		Use:   "validate <facts-file>",
		Short: "Validate a facts record (JSON or YAML)",
		Long:  `Reports missing required fields as errors and missing recommended fields as warnings. Exits with status 2 when any error is found.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(cmd, args[0])
			if err != nil {
				return err
			}
			issues := usecase.ValidateFacts(doc)
			if issues == nil {
				issues = []domain.FactsIssue{}
			}

			if validateFormat == formatJSON {
				err = a.writeJSON(cmd, issues)
			} else {
				var b strings.Builder
				for _, issue := range issues {
					fmt.Fprintf(&b, "%s: %s: %s\n", strings.ToUpper(issue.Severity), issue.Path, issue.Message)
				}
				err = a.write(cmd, b.String())
			}
			if err != nil {
				return err
			}

			if blocking := domain.BlockingIssues(issues); len(blocking) > 0 {
				return findingsExit(fmt.Sprintf("%d blocking facts issue(s)", len(blocking)))
			}
			return nil
		},
	}
	validateCmd.Flags().StringVar(&validateFormat, "format", formatText, "output format (text, json)")

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
