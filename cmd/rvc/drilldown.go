package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/config"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/export"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/report"
)

var (
	drilldownShow   string
	drilldownLimit  int
	drilldownExport string
	drilldownOpen   bool
)

// Views selectable with drilldown --show.
const (
	viewOnlyA  = "only-a"
	viewOnlyB  = "only-b"
	viewCommon = "common"
	viewUnique = "unique"
)

// DrilldownResult is the response for the drilldown command.
type DrilldownResult struct {
	A        string           `json:"a"`
	B        string           `json:"b"`
	Forward  *reconcile.Stats `json:"forward"`
	Backward *reconcile.Stats `json:"backward"`
	OnlyA    int              `json:"only_a"`
	OnlyB    int              `json:"only_b"`
	Common   int              `json:"common"`
	Unique   *int             `json:"unique,omitempty"` // nil when no principal column exists
	Message  string           `json:"message,omitempty"`
	Rows     [][]string       `json:"rows,omitempty"`
	Columns  []string         `json:"columns,omitempty"`
	Export   string           `json:"export,omitempty"`
}

func init() {
	drilldownCmd.Flags().StringVarP(&drilldownShow, "show", "s", "", "View to list: only-a, only-b, common or unique")
	drilldownCmd.Flags().IntVarP(&drilldownLimit, "limit", "l", 0, "Rows to list (0 for all)")
	drilldownCmd.Flags().StringVarP(&drilldownExport, "export", "o", "", "Write every view to an XLSX workbook")
	drilldownCmd.Flags().BoolVar(&drilldownOpen, "open", false, "Open the exported workbook")
	rootCmd.AddCommand(drilldownCmd)
}

var drilldownCmd = &cobra.Command{
	Use:   "drilldown <a> <b>",
	Short: "Split two collections into what each holds alone and in common",
	Long: `Compare two collections in both directions and split their records into:

  only-a   records of A missing from B
  only-b   records of B missing from A
  common   records of A found in B
  unique   the three views merged on the principal columns (title, author,
           year, DOI, journal) with exact duplicates dropped

Example:
  rvc drilldown HAL ORCID
  rvc drilldown HAL ORCID --show only-a --human
  rvc drilldown WoS Scopus -o wos_scopus.xlsx`,
	Args: cobra.ExactArgs(2),
	RunE: runDrilldown,
}

func runDrilldown(cmd *cobra.Command, args []string) error {
	switch drilldownShow {
	case "", viewOnlyA, viewOnlyB, viewCommon, viewUnique:
	default:
		exitWithError(ExitError, "unknown view %q (valid: only-a, only-b, common, unique)", drilldownShow)
	}

	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	log := mustNewLogger(cfg)
	defer log.Sync()

	a := mustLoadCollection(root, args[0])
	b := mustLoadCollection(root, args[1])

	p, err := report.DrillDown(mustNewReconciler(cfg, log), a, b)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	unique, ok := report.Unique(p, cfg.Principal())

	result := DrilldownResult{
		A:        p.A,
		B:        p.B,
		Forward:  p.Forward,
		Backward: p.Backward,
		OnlyA:    p.OnlyA.Len(),
		OnlyB:    p.OnlyB.Len(),
		Common:   p.Common.Len(),
	}
	if ok {
		n := unique.Len()
		result.Unique = &n
	} else {
		result.Message = report.NoPrincipalColumnsMessage
	}

	var view *collection.Collection
	switch drilldownShow {
	case viewOnlyA:
		view = p.OnlyA
	case viewOnlyB:
		view = p.OnlyB
	case viewCommon:
		view = p.Common
	case viewUnique:
		if !ok {
			exitWithError(ExitDataError, "%s", report.NoPrincipalColumnsMessage)
		}
		view = unique
	}

	if drilldownExport != "" {
		path := config.ExpandPath(drilldownExport)
		if err := writeDrilldownWorkbook(path, p, unique); err != nil {
			exitWithError(ExitError, "exporting: %v", err)
		}
		result.Export = path
		if drilldownOpen {
			mustOpenFile(path)
		}
	}

	if humanOutput {
		fmt.Println(report.Summary(p.Forward))
		fmt.Println(report.Summary(p.Backward))
		fmt.Printf("Uniquement dans %s: %d, uniquement dans %s: %d, communes: %d\n",
			p.A, result.OnlyA, p.B, result.OnlyB, result.Common)
		if result.Unique != nil {
			fmt.Printf("Publications uniques: %d\n", *result.Unique)
		} else {
			fmt.Fprintln(os.Stderr, result.Message)
		}
		if view != nil {
			cols := report.PrincipalColumns(view, cfg.Principal())
			if len(cols) == 0 {
				cols = nil
			}
			fmt.Println()
			fmt.Println(report.CollectionTable(view, cols, drilldownLimit))
		}
		if result.Export != "" {
			fmt.Printf("Exported to %s\n", result.Export)
		}
		return nil
	}

	if view != nil {
		result.Columns = view.Columns
		result.Rows = report.CollectionRows(view, view.Columns, drilldownLimit)
	}
	outputJSON(result)
	return nil
}

func writeDrilldownWorkbook(path string, p *report.Partition, unique *collection.Collection) error {
	sheets := []export.Sheet{
		export.CollectionSheet("Uniquement "+p.A, p.OnlyA),
		export.CollectionSheet("Uniquement "+p.B, p.OnlyB),
		export.CollectionSheet("Communes", p.Common),
	}
	if unique != nil {
		sheets = append(sheets, export.CollectionSheet("Publications uniques", unique))
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
