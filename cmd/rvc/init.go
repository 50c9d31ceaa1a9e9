package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/config"
)

var initTOML bool

// InitResult is the response for the init command.
type InitResult struct {
	Root        string `json:"root"`
	Config      string `json:"config"`
	Collections string `json:"collections"`
}

func init() {
	initCmd.Flags().BoolVar(&initTOML, "toml", false, "Write config.toml instead of config.yml")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a workspace",
	Long: `Create an rvc workspace (.rvc directory) in dir, or in the current directory.

The workspace holds:
  .rvc/config.yml      configuration (or config.toml with --toml)
  .rvc/collections/    imported collection snapshots
  .rvc/cache/runs.db   batch comparison history

Example:
  rvc init
  rvc init ~/visibilite --toml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = config.ExpandPath(args[0])
	}
	root, err := filepath.Abs(root)
	if err != nil {
		exitWithError(ExitError, "resolving path: %v", err)
	}

	if config.IsWorkspace(root) {
		exitWithError(ExitError, "workspace already exists: %s", config.WorkspacePath(root))
	}

	for _, dir := range []string{config.CollectionsPath(root), config.CachePath(root)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			exitWithError(ExitError, "creating %s: %v", dir, err)
		}
	}

	configPath := config.ConfigPath(root)
	if initTOML {
		// Save keeps TOML when config.toml is the only config file.
		configPath = config.TOMLConfigPath(root)
		if err := os.WriteFile(configPath, nil, 0644); err != nil {
			exitWithError(ExitError, "creating config: %v", err)
		}
	}
	if err := config.Default().Save(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	result := InitResult{
		Root:        root,
		Config:      configPath,
		Collections: config.CollectionsPath(root),
	}
	if humanOutput {
		fmt.Printf("Initialized rvc workspace in %s\n", config.WorkspacePath(root))
		fmt.Printf("  Config:      %s\n", result.Config)
		fmt.Printf("  Collections: %s\n", result.Collections)
	} else {
		outputJSON(result)
	}
	return nil
}
