// Package main provides the rvc CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/config"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/logger"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// logModeFlag overrides the configured log mode for one invocation.
var logModeFlag string

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rvc",
	Short: "Check the visibility of a researcher's publications across databases",
	Long: `rvc reconciles publication exports from bibliographic databases
(HAL, ORCID, Scopus, Web of Science, reference managers) by their shared
identifiers: DOI, PubMed ID, WoS UT and Scopus EID.

Typical workflow:
  rvc init
  rvc add hal.csv --name HAL
  rvc add orcid.json --name ORCID
  rvc compare HAL ORCID
  rvc compare-all

Imported collections are stored as JSONL snapshots under .rvc/collections;
batch runs are recorded in an SQLite history under .rvc/cache.
All commands output JSON by default; use --human for tables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logModeFlag, "log-mode", "", "Log mode: dev, prod or quiet (overrides config)")
	rootCmd.Version = Version
}

// mustFindWorkspace finds the workspace, loads its .env and exits on error.
// Returns the workspace root path.
func mustFindWorkspace() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	root, err := config.ResolveWorkspace(cwd)
	if err != nil {
		if errors.Is(err, config.ErrNoWorkspace) {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
			os.Exit(ExitConfigError)
		}
		exitWithError(ExitConfigError, "%v", err)
	}

	if err := config.LoadDotEnv(root); err != nil {
		exitWithError(ExitConfigError, "loading .env: %v", err)
	}
	return root
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustNewLogger builds the logger for this invocation. The --log-mode flag
// wins over the workspace config, which wins over the global config.
func mustNewLogger(cfg *config.Config) *logger.Logger {
	mode := logModeFlag
	if mode == "" && cfg != nil {
		mode = cfg.LogMode
	}
	if mode == "" {
		if global, err := config.LoadGlobalConfig(); err == nil {
			mode = global.LogMode
		}
	}
	log, err := logger.New(mode)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return log
}

// mustNewReconciler builds a reconciler from the workspace configuration.
func mustNewReconciler(cfg *config.Config, log *logger.Logger, opts ...reconcile.Option) *reconcile.Reconciler {
	classifier, err := cfg.Classifier()
	if err != nil {
		exitWithError(ExitConfigError, "identifier rules: %v", err)
	}
	base := []reconcile.Option{
		reconcile.WithClassifier(classifier),
		reconcile.WithLogger(log),
		reconcile.WithCoverageMode(cfg.Mode()),
	}
	return reconcile.New(append(base, opts...)...)
}

// mustLoadCollection reads a stored collection snapshot, exits on error.
func mustLoadCollection(root, name string) *collection.Collection {
	c, _, err := storage.ReadSnapshot(config.CollectionsPath(root), name)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			exitWithError(ExitDataError, "%v\n\nRun 'rvc list' to see stored collections.", err)
		}
		exitWithError(ExitDataError, "loading %s: %v", name, err)
	}
	return c
}

// mustOpenDatabase opens the run history database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(root string) *storage.DB {
	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustAcquireLock takes the workspace run lock, exits if it is held.
// The caller is responsible for calling Release().
func mustAcquireLock(root string) *storage.RunLock {
	lock, err := storage.AcquireRunLock(config.LockPath(root))
	if err != nil {
		if errors.Is(err, storage.ErrRunInProgress) {
			exitWithError(ExitConfigError, "%v", err)
		}
		exitWithError(ExitError, "%v", err)
	}
	return lock
}
