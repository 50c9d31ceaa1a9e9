package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/clipboard"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/report"
)

var (
	compareRecords   bool
	compareUnmatched bool
	compareLimit     int
	compareCopy      bool
)

// CompareResult is the response for the compare command.
type CompareResult struct {
	reconcile.Stats
	Summary  string          `json:"summary"`
	Warnings []string        `json:"warnings,omitempty"`
	Records  []CompareRecord `json:"records,omitempty"`
	Copied   int             `json:"copied,omitempty"`
}

// CompareRecord is the reconciliation outcome of one source record.
type CompareRecord struct {
	Row        int      `json:"row"`
	IDs        []string `json:"ids"`
	Matched    bool     `json:"matched"`
	MatchingID string   `json:"matching_id,omitempty"`
	Status     string   `json:"status"`
}

func init() {
	compareCmd.Flags().BoolVar(&compareRecords, "records", false, "Include per-record results")
	compareCmd.Flags().BoolVarP(&compareUnmatched, "unmatched", "u", false, "Only records missing from the target")
	compareCmd.Flags().IntVarP(&compareLimit, "limit", "l", DefaultPreviewLimit, "Rows to show with --human (0 for all)")
	compareCmd.Flags().BoolVar(&compareCopy, "copy", false, "Copy the first identifier of each listed record to the clipboard")
	rootCmd.AddCommand(compareCmd)
}

var compareCmd = &cobra.Command{
	Use:   "compare <source> <target>",
	Short: "Check which publications of a source are in a target",
	Long: `Compare two stored collections by shared identifiers.

Every record of the source is marked as found when any of its identifiers
(DOI, PubMed ID, WoS UT, Scopus EID) appears anywhere in the target.
Coverage is the share of source records found.

Example:
  rvc compare HAL ORCID
  rvc compare WoS HAL --records --unmatched
  rvc compare Scopus ORCID --human -u
  rvc compare ORCID HAL -u --copy    # paste the missing DOIs into HAL`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	log := mustNewLogger(cfg)
	defer log.Sync()

	source := mustLoadCollection(root, args[0])
	target := mustLoadCollection(root, args[1])

	aug, stats, err := mustNewReconciler(cfg, log).Pair(source, target)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	rows := allRows(aug.Len())
	if compareUnmatched {
		rows = aug.UnmatchedRows()
	}

	copied := 0
	if compareCopy {
		copied, err = clipboard.CopyLines(firstIDs(aug, rows))
		if err != nil {
			exitWithError(ExitError, "copying to clipboard: %v", err)
		}
		log.Info("copied identifiers", "count", copied)
	}

	if humanOutput {
		fmt.Println(report.Summary(stats))
		if compareCopy {
			fmt.Fprintf(os.Stderr, "Copied %d identifiers to the clipboard\n", copied)
		}
		for _, w := range stats.Warnings {
			fmt.Printf("  warning: %v\n", w)
		}
		if len(rows) == 0 {
			return nil
		}
		sel := source.Select(rows)
		cols := report.PrincipalColumns(sel, cfg.Principal())
		if len(cols) == 0 {
			cols = aug.DisplayColumns()
		}
		table := report.CollectionRows(sel, cols, compareLimit)
		for i, idx := range rows[:len(table)] {
			table[i] = append(table[i], aug.Status(idx))
		}
		fmt.Println()
		fmt.Println(report.RenderTable(append(cols, aug.StatusColumn()), table, nil))
		if compareLimit > 0 && len(rows) > compareLimit {
			fmt.Printf("... %d more\n", len(rows)-compareLimit)
		}
		return nil
	}

	result := CompareResult{Stats: *stats, Summary: report.Summary(stats), Copied: copied}
	for _, w := range stats.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}
	if compareRecords {
		for _, i := range rows {
			result.Records = append(result.Records, CompareRecord{
				Row:        i,
				IDs:        aug.IDs[i],
				Matched:    aug.Matched[i],
				MatchingID: aug.MatchingID[i],
				Status:     aug.Status(i),
			})
		}
	}
	outputJSON(result)
	return nil
}

// allRows returns the indices 0..n-1.
func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// firstIDs returns the first identifier of each row that has one.
func firstIDs(aug *reconcile.Augmented, rows []int) []string {
	var ids []string
	for _, i := range rows {
		if len(aug.IDs[i]) > 0 {
			ids = append(ids, aug.IDs[i][0])
		}
	}
	return ids
}
