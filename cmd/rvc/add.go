package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/config"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/extract"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/importer"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/storage"
)

var (
	addName   string
	addFormat string
	addSheet  string
	addRaw    bool
	addForce  bool
	addDryRun bool
)

// AddResult is the response for the add command.
type AddResult struct {
	Name              string                `json:"name"`
	Format            string                `json:"format"`
	Rows              int                   `json:"rows"`
	Columns           []string              `json:"columns"`
	IdentifierColumns []extract.ColumnMatch `json:"identifier_columns"`
	Mapping           extract.Mapping       `json:"suggested_mapping"`
	Replaced          bool                  `json:"replaced,omitempty"`
	DryRun            bool                  `json:"dry_run,omitempty"`
	Path              string                `json:"path,omitempty"`
}

func init() {
	addCmd.Flags().StringVarP(&addName, "name", "n", "", "Collection name (default: file name without extension)")
	addCmd.Flags().StringVar(&addFormat, "format", "", "Input format: "+formatList()+" (default: from extension)")
	addCmd.Flags().StringVar(&addSheet, "sheet", "", "XLSX sheet to read (default: first sheet)")
	addCmd.Flags().BoolVar(&addRaw, "raw", false, "Skip source cleanups (ORCID pivot, Scopus dates)")
	addCmd.Flags().BoolVarP(&addForce, "force", "f", false, "Replace an existing collection with the same name")
	addCmd.Flags().BoolVar(&addDryRun, "dry-run", false, "Parse and report without storing")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <file|dir>",
	Short: "Import a publication export as a collection",
	Long: `Import a publication export as a named collection.

Supported inputs:
  .csv           CSV (comma, semicolon or tab separated; BOM tolerated)
  .xlsx          Excel workbook
  .json/.jsonl   JSON array of records, or one record per line
  .bib           BibTeX
  paperpile      Paperpile JSON export (--format paperpile)
  directory      PDFs; the DOI is read from each file

ORCID exports in long form (type/value columns) are pivoted to one column
per identifier type and Scopus dates are reduced to the year, unless --raw.

Example:
  rvc add hal.csv --name HAL
  rvc add ~/Downloads/wos.xlsx -n WoS --sheet savedrecs
  rvc add library.json --format paperpile -n Paperpile`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func formatList() string {
	names := make([]string, len(importer.ValidFormats))
	for i, f := range importer.ValidFormats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func runAdd(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	log := mustNewLogger(cfg)
	defer log.Sync()

	path := config.ExpandPath(args[0])
	name := addName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := storage.ValidateName(name); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	opts := importer.Options{Sheet: addSheet, Raw: addRaw}
	if addFormat != "" {
		f, err := importer.ParseFormat(addFormat)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		opts.Format = f
	} else {
		f, err := importer.DetectFormat(path)
		if err != nil {
			exitWithError(ExitError, "%v (use --format)", err)
		}
		opts.Format = f
	}

	c, err := importer.Load(path, name, opts)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			exitWithError(ExitError, "file not found: %s", path)
		}
		exitWithError(ExitDataError, "%v", err)
	}
	log.Info("imported collection", "name", name, "format", opts.Format, "rows", c.Len())

	classifier, err := cfg.Classifier()
	if err != nil {
		exitWithError(ExitConfigError, "identifier rules: %v", err)
	}
	result := AddResult{
		Name:              name,
		Format:            string(opts.Format),
		Rows:              c.Len(),
		Columns:           c.Columns,
		IdentifierColumns: classifier.IdentifierColumns(c.Columns),
		Mapping:           extract.SuggestMapping(c.Columns),
		DryRun:            addDryRun,
	}
	if len(result.IdentifierColumns) == 0 {
		log.Warn("no identifier column found; this collection will never match", "name", name)
	}

	if !addDryRun {
		lock := mustAcquireLock(root)
		defer lock.Release()

		dir := config.CollectionsPath(root)
		if _, err := os.Stat(storage.SnapshotPath(dir, name)); err == nil {
			if !addForce {
				exitWithError(ExitError, "collection %q already exists (use --force to replace it)", name)
			}
			result.Replaced = true
		}

		abs, _ := filepath.Abs(path)
		meta := storage.SnapshotMeta{Source: abs, Format: string(opts.Format)}
		if err := storage.WriteSnapshot(dir, c, meta); err != nil {
			exitWithError(ExitError, "storing collection: %v", err)
		}
		result.Path = storage.SnapshotPath(dir, name)
	}

	if humanOutput {
		verb := "Added"
		switch {
		case addDryRun:
			verb = "Would add"
		case result.Replaced:
			verb = "Replaced"
		}
		fmt.Printf("%s %s: %d records, %d columns (%s)\n", verb, name, result.Rows, len(result.Columns), result.Format)
		if len(result.IdentifierColumns) == 0 {
			fmt.Println("  No identifier column found")
		}
		for _, m := range result.IdentifierColumns {
			fmt.Printf("  %-30s %s\n", m.Column, m.Type)
		}
	} else {
		outputJSON(result)
	}
	return nil
}
