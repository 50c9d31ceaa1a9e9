package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/extract"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/report"
)

var inspectLimit int

// InspectResult is the response for the inspect command.
type InspectResult struct {
	Name              string                `json:"name"`
	Rows              int                   `json:"rows"`
	Columns           []string              `json:"columns"`
	IdentifierColumns []extract.ColumnMatch `json:"identifier_columns"`
	Mapping           extract.Mapping       `json:"suggested_mapping"`
	WithIdentifiers   int                   `json:"with_identifiers"`
	SkippedCells      int                   `json:"skipped_cells"`
	DateColumn        string                `json:"date_column,omitempty"`
	Years             []report.YearCount    `json:"years,omitempty"`
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectLimit, "limit", "l", DefaultPreviewLimit, "Rows to preview with --human (0 for none)")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <name>",
	Short: "Show identifier columns and year distribution of a collection",
	Long: `Show how a stored collection will be reconciled: which columns carry
identifiers, how many records have at least one, which cells could not be
read, and how publications are distributed over the years.

Example:
  rvc inspect HAL
  rvc inspect WoS --human --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	log := mustNewLogger(cfg)
	defer log.Sync()

	c := mustLoadCollection(root, args[0])
	classifier, err := cfg.Classifier()
	if err != nil {
		exitWithError(ExitConfigError, "identifier rules: %v", err)
	}
	res := extract.New(classifier, log).Extract(c)

	result := InspectResult{
		Name:              c.Name,
		Rows:              c.Len(),
		Columns:           c.Columns,
		IdentifierColumns: res.Columns,
		Mapping:           extract.SuggestMapping(c.Columns),
		SkippedCells:      res.RowErrors(),
	}
	for i := range res.IDs {
		if res.HasIDs(i) {
			result.WithIdentifiers++
		}
	}
	if years, col, ok := report.YearDistribution(c); ok {
		result.DateColumn = col
		result.Years = years
	}

	if !humanOutput {
		outputJSON(result)
		return nil
	}

	fmt.Printf("%s: %d records, %d with identifiers", result.Name, result.Rows, result.WithIdentifiers)
	if result.SkippedCells > 0 {
		fmt.Printf(", %d unreadable cells", result.SkippedCells)
	}
	fmt.Println()

	if len(result.IdentifierColumns) == 0 {
		fmt.Println("\nNo identifier column found")
	} else {
		rows := make([][]string, len(result.IdentifierColumns))
		for i, m := range result.IdentifierColumns {
			rows[i] = []string{m.Column, string(m.Type), m.Pattern}
		}
		fmt.Println()
		fmt.Println(report.RenderTable([]string{"Column", "Type", "Rule"}, rows, nil))
	}

	if result.DateColumn != "" {
		rows := make([][]string, len(result.Years))
		for i, y := range result.Years {
			rows[i] = []string{y.Year, strconv.Itoa(y.Count)}
		}
		fmt.Printf("\nPublications per year (%s)\n", result.DateColumn)
		fmt.Println(report.RenderTable([]string{"Année", "Publications"}, rows,
			[]report.Alignment{report.AlignLeft, report.AlignRight}))
	}

	if inspectLimit > 0 && c.Len() > 0 {
		cols := report.PrincipalColumns(c, cfg.Principal())
		if len(cols) == 0 {
			cols = nil
		}
		fmt.Println()
		fmt.Println(report.CollectionTable(c, cols, inspectLimit))
	}
	return nil
}
