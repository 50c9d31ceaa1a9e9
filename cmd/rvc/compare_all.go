package main

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/config"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/export"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/logger"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/report"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/storage"
)

var (
	compareAllMode      string
	compareAllExport    string
	compareAllNoHistory bool
)

// ProgressLogInterval bounds how often batch progress is logged when no
// progress bar is shown.
const ProgressLogInterval = 2 * time.Second

// CompareAllResult is the response for the compare-all command.
type CompareAllResult struct {
	RunID       string                 `json:"run_id,omitempty"`
	Mode        reconcile.CoverageMode `json:"mode"`
	Collections []string               `json:"collections"`
	Recap       []reconcile.RecapEntry `json:"recap"`
	Failures    []storage.Failure      `json:"failures,omitempty"`
	Export      string                 `json:"export,omitempty"`
}

func init() {
	compareAllCmd.Flags().StringVarP(&compareAllMode, "mode", "m", "", "Coverage mode: symmetric or source (overrides config)")
	compareAllCmd.Flags().StringVarP(&compareAllExport, "export", "o", "", "Write the recap and every pair to an XLSX workbook")
	compareAllCmd.Flags().BoolVar(&compareAllNoHistory, "no-history", false, "Do not record this run in the history")
	rootCmd.AddCommand(compareAllCmd)
}

var compareAllCmd = &cobra.Command{
	Use:   "compare-all [name...]",
	Short: "Compare every pair of collections and summarize coverage",
	Long: `Compare every unordered pair of collections and print a coverage recap.

With no names, every stored collection is used, in name order. Pairs are
(A, B) with A before B in that order; each pair annotates A with its
presence in B.

Coverage modes:
  symmetric  common / (total A + total B - common)   (default)
  source     common / total A

Both values are always stored; the mode picks the one shown.
A pair that fails is reported and the other pairs still run.

Example:
  rvc compare-all
  rvc compare-all HAL ORCID WoS --human
  rvc compare-all --mode source -o recoupement.xlsx`,
	RunE: runCompareAll,
}

func runCompareAll(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	if compareAllMode != "" {
		if err := cfg.Set("coverage-mode", compareAllMode); err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}
	log := mustNewLogger(cfg)
	defer log.Sync()

	lock := mustAcquireLock(root)
	defer lock.Release()

	collections, err := storage.ReadSnapshots(config.CollectionsPath(root), args)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	names := make([]string, len(collections))
	for i, c := range collections {
		names[i] = c.Name
	}

	progress, finish := newBatchProgress(reconcile.PairCount(len(collections)), log)
	r := mustNewReconciler(cfg, log, reconcile.WithProgress(progress))

	started := time.Now()
	batch, err := r.All(collections)
	finish()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	finished := time.Now()

	result := CompareAllResult{
		Mode:        batch.Mode,
		Collections: names,
		Recap:       batch.Recap,
	}
	for _, f := range batch.Failures {
		result.Failures = append(result.Failures, storage.Failure{Source: f.Source, Target: f.Target, Error: f.Err.Error()})
	}

	if !compareAllNoHistory {
		db := mustOpenDatabase(root)
		run, err := db.RecordRun(batch, names, started, finished)
		db.Close()
		if err != nil {
			exitWithError(ExitError, "recording run: %v", err)
		}
		result.RunID = run.ID
		log.Info("run recorded", "id", run.ID)
	}

	if compareAllExport != "" {
		path := config.ExpandPath(compareAllExport)
		if err := writeBatchWorkbook(path, batch); err != nil {
			exitWithError(ExitError, "exporting: %v", err)
		}
		result.Export = path
	}

	if humanOutput {
		fmt.Println(report.RecapTable(batch.Recap))
		for _, f := range result.Failures {
			fmt.Fprintf(os.Stderr, "failed: %s / %s: %s\n", f.Source, f.Target, f.Error)
		}
		if result.RunID != "" {
			fmt.Printf("Run %s (%s coverage)\n", result.RunID[:8], result.Mode)
		}
		if result.Export != "" {
			fmt.Printf("Exported to %s\n", result.Export)
		}
	} else {
		outputJSON(result)
	}

	if len(batch.Failures) > 0 {
		lock.Release()
		log.Sync()
		os.Exit(ExitDataError)
	}
	return nil
}

// newBatchProgress returns the batch progress callback and a function to
// call when the batch ends. On an interactive stderr a progress bar is drawn;
// otherwise progress is logged at most every ProgressLogInterval.
func newBatchProgress(total int, log *logger.Logger) (reconcile.ProgressFunc, func()) {
	if humanOutput && isTerminal(os.Stderr) {
		bar := progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Comparaisons"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		return func(done, _ int) { _ = bar.Set(done) }, func() { _ = bar.Finish() }
	}

	sometimes := rate.Sometimes{First: 1, Interval: ProgressLogInterval}
	return func(done, total int) {
		if done == total {
			return
		}
		sometimes.Do(func() { log.Info("batch progress", "done", done, "total", total) })
	}, func() {}
}

// writeBatchWorkbook writes the recap sheet then one sheet per pair.
func writeBatchWorkbook(path string, batch *reconcile.Batch) error {
	sheets := []export.Sheet{export.RecapSheet(batch.Recap)}
	for i := range batch.Pairs {
		sheets = append(sheets, export.AugmentedSheet(batch.Pairs[i].Augmented))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteXLSX(f, sheets); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
