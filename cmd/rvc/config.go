package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set workspace configuration values.

Usage:
  rvc config                            # Show all config
  rvc config coverage-mode              # Get specific value
  rvc config coverage-mode source       # Set value
  rvc config researcher "Humbert, Marc" # Default name for anomalies

Keys:
  coverage-mode  Headline coverage of compare-all: symmetric or source
  log-mode       Logging: dev, prod or quiet
  researcher     Researcher name as written in author lists
  export-dir     Default directory of export files

Identifier rules and principal columns are edited in .rvc/config.yml.
RVC_COVERAGE_MODE and RVC_LOG_MODE (also read from .env) override the file.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			for _, key := range config.Keys {
				v, _ := cfg.Get(key)
				fmt.Printf("%-14s %s\n", key+":", v)
			}
			fmt.Printf("%-14s %d\n", "rules:", len(cfg.IdentifierRules))
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := args[0]

	// One arg: get specific value
	if len(args) == 1 {
		v, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(v)
		} else {
			outputJSON(map[string]string{key: v})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if err := cfg.Set(key, value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}
