package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/report"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/storage"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", DefaultHistoryLimit, "Runs to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List past compare-all runs, or show one",
	Long: `List recorded compare-all runs, newest first, or show the recap of one run.
A run can be named by any unique prefix of its ID.

Example:
  rvc history
  rvc history 3f2a9c1e --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	db := mustOpenDatabase(root)
	defer db.Close()

	if len(args) == 1 {
		detail, err := db.GetRun(args[0])
		if err != nil {
			if errors.Is(err, storage.ErrRunNotFound) || errors.Is(err, storage.ErrAmbiguousRun) {
				exitWithError(ExitDataError, "%v", err)
			}
			exitWithError(ExitError, "%v", err)
		}
		if !humanOutput {
			outputJSON(detail)
			return nil
		}
		fmt.Printf("Run %s  %s  (%s coverage, %s)\n", detail.ID, detail.StartedAt.Local().Format("2006-01-02 15:04"),
			detail.Mode, detail.FinishedAt.Sub(detail.StartedAt).Round(time.Millisecond))
		fmt.Println(report.RecapTable(detail.Recap))
		for _, f := range detail.Failures {
			fmt.Fprintf(os.Stderr, "failed: %s / %s: %s\n", f.Source, f.Target, f.Error)
		}
		return nil
	}

	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if !humanOutput {
		if runs == nil {
			runs = []storage.Run{}
		}
		outputJSON(runs)
		return nil
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded (run 'rvc compare-all')")
		return nil
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.ID[:min(8, len(r.ID))],
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			string(r.Mode),
			truncateString(strings.Join(r.Collections, ", "), 40),
			strconv.Itoa(r.PairCount),
			strconv.Itoa(r.FailureCount),
		}
	}
	fmt.Println(report.RenderTable(
		[]string{"Run", "Started", "Mode", "Collections", "Pairs", "Failed"},
		rows,
		[]report.Alignment{report.AlignLeft, report.AlignLeft, report.AlignLeft, report.AlignLeft, report.AlignRight, report.AlignRight},
	))
	return nil
}
