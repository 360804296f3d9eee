package cmd

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tristendillon/routefix/core/cache"
	"github.com/tristendillon/routefix/core/config"
	"github.com/tristendillon/routefix/core/logger"
	"github.com/tristendillon/routefix/core/models"
	"github.com/tristendillon/routefix/core/report"
	"github.com/tristendillon/routefix/core/scanner"
	"github.com/tristendillon/routefix/core/walker"
	"github.com/tristendillon/routefix/core/watcher"
)

var (
	format    string
	watch     bool
	failOnHit bool
)

var ErrImportsFound = errors.New("improper imports of API route files found")

var checkCmd = &cobra.Command{
	Use:   "check [root]",
	Short: "Report imports of API route files",
	Long: `Walks the tree under root (default: scan.root, ".") and reports every import
whose module path points at an app/api/.../route.ts or route.js file.
Directories listed in scan.exclude are never entered.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("check called")

		root := cfg.Scan.Root
		if len(args) == 1 {
			root = args[0]
		}
		if cmd.Flags().Changed("format") {
			cfg.Output.Format = format
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		s, err := scanner.NewScanner(cfg.Scan)
		if err != nil {
			return err
		}

		if watch {
			return watchTree(cmd, s, root)
		}

		rs, err := runCheck(cmd.OutOrStdout(), s, root, logger.DEBUG)
		if err != nil {
			return err
		}
		if failOnHit && !rs.Empty() {
			return ErrImportsFound
		}
		return nil
	},
}

// runCheck scans root and writes the report. The scan summary is logged at
// summaryLevel.
func runCheck(out io.Writer, s *scanner.Scanner, root string, summaryLevel logger.LogLevel) (*models.ResultSet, error) {
	rs, err := s.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	logger.GetLogFromLevel(summaryLevel)("%s", report.Summary(rs))

	switch cfg.Output.Format {
	case config.FormatTable:
		err = report.Table(out, rs)
	default:
		err = report.Text(out, rs)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return rs, nil
}

func watchTree(cmd *cobra.Command, s *scanner.Scanner, root string) error {
	mc, err := cache.NewMatchCache(cache.DefaultCacheConfig())
	if err != nil {
		return err
	}
	s.Cache = mc

	fw, err := watcher.NewFileWatcher(root, walker.NewExclusionSet(cfg.Scan.Exclude...))
	if err != nil {
		return err
	}
	defer fw.Close()

	rerun := func() error {
		_, err := runCheck(cmd.OutOrStdout(), s, root, logger.INFO)
		return err
	}
	fw.FileWatcher.AddOnStartFunc(rerun)
	fw.FileWatcher.AddOnChangeFunc(rerun)
	fw.FileWatcher.AddOnInvalidateFunc(mc.Invalidate)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Watching %s for changes (Ctrl+C to stop)", root)
	return fw.Watch(ctx)
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&format, "format", config.FormatText, "Report format: text or table")
	checkCmd.Flags().BoolVar(&watch, "watch", false, "Rescan whenever files under root change")
	checkCmd.Flags().BoolVar(&failOnHit, "fail", false, "Exit with status 1 when any import is found")
}
