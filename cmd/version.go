/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tristendillon/routefix/core/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version of Routefix",
	Long:  `Displays the version of Routefix.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Routefix %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
