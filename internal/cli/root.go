// Package cli wires the command surface: clustering runs over sign-off
// reports and a viewer for previously written result files.
package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/sieve/internal/logging"
)

var rootFlags struct {
	logLevel string
	logJSON  bool
}

// NewRootCommand builds the sieve command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sieve",
		Short: "Cluster sign-off report violations into triageable groups",
		Long: `sieve compresses thousands of violation lines from EDA sign-off
reports into a small set of representative issue groups. Structural
grouping is deterministic; semantically equivalent groups are merged
using embeddings and density clustering.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(rootFlags.logJSON, logging.ParseLevel(rootFlags.logLevel))
		},
	}

	root.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&rootFlags.logJSON, "log-json", false,
		"emit logs as JSON")

	root.AddCommand(newGCACommand())
	root.AddCommand(newClusterCommand())
	root.AddCommand(newViewCommand())
	return root
}

// Execute runs the CLI and returns a process exit code. SIGINT and
// SIGTERM cancel the command context so in-flight embedding calls stop.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		return 1
	}
	return 0
}
