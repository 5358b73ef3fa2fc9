// Package main is the entry point for the stakeout CLI.
//
// Stakeout can be used either as a library (SDK) or as a standalone
// binary with YAML configuration. This CLI provides the standalone
// binary approach: wait for a set of readiness targets, then exit.
//
// Usage:
//
//	stakeout wait -c targets.yaml     # Block until all targets are ready
//	stakeout validate -c targets.yaml # Validate configuration
//	stakeout version                  # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "stakeout",
	Short: "Wait for services, ports, and files to become ready",
	Long: `Stakeout blocks until a set of readiness targets become available,
or fails once their deadlines elapse. Use it as a container entrypoint
gate, a CI readiness step, or anywhere "wait-for-it" scripts live.

Quick start:
  1. Create a config file (targets.yaml)
  2. Run: stakeout wait -c targets.yaml
  3. Exit code 0 means every target became ready

Example config:
  timeout: 2m
  interval: 500ms
  targets:
    - name: Postgres
      tcp: localhost:5432
    - name: API
      http: http://localhost:8080/health
      status: 200`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this stakeout binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stakeout %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
