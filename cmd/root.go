/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tristendillon/routefix/core/config"
	"github.com/tristendillon/routefix/core/logger"
)

var rootCmd = &cobra.Command{
	Use:   "routefix",
	Short: "Checks and fixes API route files in a Next.js style app directory.",
	Long: `Routefix keeps app/api route modules honest.

  check  reports source files that import an app/api/.../route.ts or route.js module
  fix    makes sure every route file starts with the force-dynamic export`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
			logFile = nil
		}
	},
}

var logfile string
var verbose bool
var configPath string

var cfg *config.Config
var logFile *os.File

func Execute() {
	logger.SetErrorWriter()
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	if err := setupLogging(); err != nil {
		return err
	}

	loaded, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func setupLogging() error {
	logger.SetVerbose(verbose)

	if logfile != "" {
		f, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		logger.AddWriterForAll(f)
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.Load(wd)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to routefix.yaml (default: ./routefix.yaml)")
}
