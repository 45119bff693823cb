package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tododash/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tododash",
		Short: "Todoist dashboard view service",
		Long:  `tododash periodically syncs a Todoist account, filters the tasks into named, ordered, size-bounded views, and serves them as JSON for a dashboard renderer.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewRefreshCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
