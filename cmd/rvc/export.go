package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/config"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/export"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/opener"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
)

var (
	exportFormat    string
	exportOutput    string
	exportUnmatched bool
	exportOpen      bool
)

// Export formats.
const (
	exportCSV    = "csv"
	exportXLSX   = "xlsx"
	exportBibTeX = "bib"
)

// ExportResult is the response for the export command.
type ExportResult struct {
	Path    string `json:"path"`
	Format  string `json:"format"`
	Records int    `json:"records"`
	Skipped int    `json:"skipped,omitempty"` // bib entries already in the file
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", exportXLSX, "Output format: csv, xlsx or bib")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: <export-dir>/<source>_<target>.<format>)")
	exportCmd.Flags().BoolVarP(&exportUnmatched, "unmatched", "u", false, "Only records missing from the target")
	exportCmd.Flags().BoolVar(&exportOpen, "open", false, "Open the written file (program from "+opener.EnvProgram+" or the desktop default)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <source> <target>",
	Short: "Write a comparison result to CSV, XLSX or BibTeX",
	Long: `Compare source with target and write the annotated source.

CSV and XLSX carry every source column plus the derived columns
(all_ids, in_<target>, matching_id_<target>, statut_<target>).
BibTeX appends the records as entries to a .bib file, skipping entries whose
key or DOI is already present, so that publications missing from a database
can be collected for deposit.

Example:
  rvc export HAL ORCID
  rvc export WoS HAL --format csv -o wos_hal.csv
  rvc export Scopus HAL --unmatched --format bib -o a_deposer.bib`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	switch exportFormat {
	case exportCSV, exportXLSX, exportBibTeX:
	default:
		exitWithError(ExitError, "unknown export format %q (valid: csv, xlsx, bib)", exportFormat)
	}

	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	log := mustNewLogger(cfg)
	defer log.Sync()

	source := mustLoadCollection(root, args[0])
	target := mustLoadCollection(root, args[1])

	aug, _, err := mustNewReconciler(cfg, log).Pair(source, target)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	path := config.ExpandPath(exportOutput)
	if path == "" {
		dir := cfg.ExportPath(root)
		if err := os.MkdirAll(dir, 0755); err != nil {
			exitWithError(ExitError, "creating export directory: %v", err)
		}
		path = filepath.Join(dir, reconcile.PairKey(source.Name, target.Name)+"."+exportFormat)
	}

	result := ExportResult{Path: path, Format: exportFormat}
	switch exportFormat {
	case exportBibTeX:
		rows := allRows(aug.Len())
		if exportUnmatched {
			rows = aug.UnmatchedRows()
		}
		written, skipped, err := export.AppendNew(path, export.Entries(source.Select(rows)))
		if err != nil {
			exitWithError(ExitError, "writing %s: %v", path, err)
		}
		result.Records = written
		result.Skipped = skipped
	default:
		sheet := export.AugmentedSheet(aug)
		if exportUnmatched {
			var kept [][]string
			for _, i := range aug.UnmatchedRows() {
				kept = append(kept, sheet.Rows[i])
			}
			sheet.Rows = kept
		}
		if err := writeSheet(path, exportFormat, sheet); err != nil {
			exitWithError(ExitError, "writing %s: %v", path, err)
		}
		result.Records = len(sheet.Rows)
	}
	log.Info("exported comparison", "path", path, "records", result.Records)
	if exportOpen {
		mustOpenFile(path)
	}

	if humanOutput {
		fmt.Printf("Wrote %d records to %s", result.Records, result.Path)
		if result.Skipped > 0 {
			fmt.Printf(" (%d already present)", result.Skipped)
		}
		fmt.Println()
	} else {
		outputJSON(result)
	}
	return nil
}

// mustOpenFile opens path with the desktop application, or exits.
func mustOpenFile(path string) {
	if err := opener.FromEnv().Open(path); err != nil {
		exitWithError(ExitError, "opening %s: %v", path, err)
	}
}

func writeSheet(path, format string, sheet export.Sheet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if format == exportCSV {
		err = export.WriteCSV(f, sheet.Header, sheet.Rows)
	} else {
		err = export.WriteXLSX(f, []export.Sheet{sheet})
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
