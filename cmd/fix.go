package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tristendillon/routefix/core/inserter"
	"github.com/tristendillon/routefix/core/logger"
	"github.com/tristendillon/routefix/core/models"
	"github.com/tristendillon/routefix/core/report"
)

var (
	dryRun    bool
	normalize bool
	exclude   bool
)

var fixCmd = &cobra.Command{
	Use:   "fix [dir]",
	Short: "Ensure every route file exports dynamic = 'force-dynamic'",
	Long: `Walks dir (default: fix.dir, "app/api") and prepends the marker line
followed by a blank line to every file ending in route.ts or route.js that does
not already contain it. Files are rewritten in place; no backup is kept.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("fix called")

		dir := cfg.Fix.Dir
		if len(args) == 1 {
			dir = args[0]
		}
		if cmd.Flags().Changed("exclude") {
			cfg.Fix.ApplyExclude = exclude
		}

		in := inserter.NewInserter(cfg)
		in.DryRun = dryRun
		in.Normalize = normalize

		out := cmd.OutOrStdout()
		in.OnResult = func(r models.FixResult) {
			fmt.Fprintln(out, report.FixLine(r))
			if r.Diff != "" {
				fmt.Fprint(out, r.Diff)
			}
		}

		results, err := in.EnsureMarker(filepath.Clean(dir))
		if err != nil {
			return fmt.Errorf("fix aborted: %w", err)
		}

		if len(results) == 0 {
			fmt.Fprintln(out, report.NoRouteFiles(dir))
			return nil
		}

		changed := 0
		for _, r := range results {
			if r.Changed() {
				changed++
			}
		}
		logger.Debug("Handled %d route files, %d changed", len(results), changed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fixCmd)

	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without writing")
	fixCmd.Flags().BoolVar(&normalize, "normalize", false, "Hoist existing dynamic exports to the top and drop duplicates")
	fixCmd.Flags().BoolVar(&exclude, "exclude", false, "Skip the scan.exclude directories (overrides fix.apply_exclude)")
}
