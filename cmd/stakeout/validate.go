package main

import (
	"fmt"

	"github.com/jpalmerr/stakeout/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without waiting on anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a stakeout configuration file without running any waits.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  stakeout validate -c targets.yaml
  stakeout validate --config /etc/stakeout/targets.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// count targets per kind
	kinds := map[string]int{}
	for _, tc := range cfg.Targets {
		kinds[tc.Kind()]++
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Timeout:         %s\n", cfg.Timeout.Duration())
	fmt.Printf("  Interval:        %s\n", cfg.Interval.Duration())
	fmt.Printf("  Max concurrency: %d\n", cfg.MaxConcurrency)
	fmt.Printf("  Targets:         %d http + %d tcp + %d file = %d total\n",
		kinds["http"], kinds["tcp"], kinds["file"], len(cfg.Targets))

	return nil
}
