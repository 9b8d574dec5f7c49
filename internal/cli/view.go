package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/sieve/internal/results"
	"github.com/crimson-sun/sieve/internal/view"
)

func newViewCommand() *cobra.Command {
	var (
		topN    int
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "view <results-file>",
		Short: "Render a results file as a terminal report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := results.Read(args[0])
			if err != nil {
				return err
			}
			if os.Getenv("NO_COLOR") != "" {
				noColor = true
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), view.Render(doc, view.Options{
				TopN:    topN,
				NoColor: noColor,
			}))
			return err
		},
	}
	cmd.Flags().IntVar(&topN, "top", 20, "show only the top N groups, 0 for all")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable styled output")
	return cmd
}
