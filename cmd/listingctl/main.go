// Command listingctl generates marketplace listing drafts from product facts
// records and scans listing copy for compliance risks. It is read-only: it
// never talks to a marketplace, it only prints or writes files.
//
// Usage:
//
//	listingctl facts init --format yaml > facts.yaml
//	listingctl facts validate facts.yaml
//	listingctl listing generate --facts facts.yaml --size "1 Gallon" --out listing.json
//	listingctl compliance scan listing.json --facts facts.yaml
//	listingctl flatfile generate --headers template_keys.txt --facts facts.yaml
//
// Commands that find hard compliance risks, blocking facts issues or blocked
// keywords exit with status 2, as does a refused flat-file export. Any other
// failure exits with status 1.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cruz1171975/amazonenrichment/config"
	"github.com/cruz1171975/amazonenrichment/internal/domain"
	"github.com/cruz1171975/amazonenrichment/internal/logging"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitFindings = 2
)

// exitError carries a non-zero exit status for a command whose output was
// already written, e.g. a scan that found hard findings.
type exitError struct {
	code   int
	reason string
}

func (e *exitError) Error() string { return e.reason }

func findingsExit(reason string) error {
	return &exitError{code: exitFindings, reason: reason}
}

// app holds the state shared by all commands
type app struct {
	out      string
	force    bool
	logLevel string

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(stderr, "listingctl: %v\n", err)
	if errors.Is(err, domain.ErrComplianceRejection) {
		return exitFindings
	}
	return exitFailure
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "listingctl",
		Short:         "Listing generator and compliance scanner",
		Long:          `Generates marketplace listing drafts from product facts records and scans listing copy against the compliance blocklist.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.out, "out", "o", "", "write output to a file (default: stdout)")
	root.PersistentFlags().BoolVar(&a.force, "force", false, "allow overwriting an existing --out file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		a.factsCmd(),
		a.complianceCmd(),
		a.listingCmd(),
		a.keywordsCmd(),
		a.flatfileCmd(),
	)
	return root
}

// init loads configuration and builds the logger once per invocation
func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	logger, err := logging.New(a.logLevel, cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger
	return nil
}
