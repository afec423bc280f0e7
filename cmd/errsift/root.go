// ABOUTME: Root command for errsift CLI
// ABOUTME: Sets up global flags and subcommands

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Global flags.
var (
	cfgFile   string
	logLevel  string
	logFormat string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "errsift",
		Short: "errsift - Error normalization and sanitization service",
		Long: `errsift normalizes raw errors from any source into clean, categorized,
secret-free records. Every error passes through message cleaning,
category classification, detail extraction, recursive sanitization,
and fingerprint deduplication before it is emitted or archived.

Supports daemon mode with NATS intake and an HTTP API, plus one-shot
CLI commands for classifying errors, sanitizing payloads, and
querying archived records.`,
	}

	// Global flags.
	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.errsift/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (json, text)")

	// Add subcommands.
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDaemonCmd())
	cmd.AddCommand(newClassifyCmd())
	cmd.AddCommand(newSanitizeCmd())
	cmd.AddCommand(newRecordsCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("errsift version %s\n", version)
			fmt.Printf("  Git SHA:    %s\n", gitSHA)
			fmt.Printf("  Build Time: %s\n", buildTime)
		},
	}
}
