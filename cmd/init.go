/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tristendillon/routefix/core/config"
	"github.com/tristendillon/routefix/core/logger"
)

var (
	force bool
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default routefix.yaml",
	Long:  `Creates routefix.yaml with the default scan and fix settings in dir (default: the working directory).`,
	Args:  cobra.MaximumNArgs(1),
	// init must work even when an existing routefix.yaml is broken, so it
	// sets up logging without loading config.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("init called")
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		path := filepath.Join(dir, config.FileName)
		if _, err := os.Stat(path); err == nil {
			if !force {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists. Use --force to overwrite.\n", path)
				return nil
			}
			logger.Debug("%s already exists. Overwriting.", path)
		}

		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		if err := config.Default().Write(path); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		fmt.Fprintf(cmd.OutOrStdout(), "Next Steps:\n")
		fmt.Fprintf(cmd.OutOrStdout(), "  - routefix check\n")
		fmt.Fprintf(cmd.OutOrStdout(), "  - routefix fix --dry-run\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing routefix.yaml")
}
