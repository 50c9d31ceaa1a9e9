package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/anomaly"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/report"
)

var (
	anomaliesResearcher string
	anomaliesColumn     string
)

// AnomaliesResult is the response for the anomalies command.
type AnomaliesResult struct {
	*anomaly.Report
	Message string          `json:"message"`
	Records []AnomalyRecord `json:"records"`
}

// AnomalyRecord is one checked record with its suggested action.
type AnomalyRecord struct {
	Row     int    `json:"row"`
	Authors string `json:"authors"`
	Flagged bool   `json:"flagged"`
	Action  string `json:"action"`
}

func init() {
	anomaliesCmd.Flags().StringVarP(&anomaliesResearcher, "researcher", "r", "", "Researcher name as written in author lists (default: config researcher)")
	anomaliesCmd.Flags().StringVarP(&anomaliesColumn, "column", "c", "", "Author list column (default: "+anomaly.DefaultAuthorColumn+")")
	rootCmd.AddCommand(anomaliesCmd)
}

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies <name>",
	Short: "Flag records whose author list does not name the researcher",
	Long: `Flag the records of a collection, typically a Web of Science profile
export, whose author list does not contain the researcher's name. Such
records were probably attached to the profile by mistake.

The most frequent last names among flagged records are listed to help spot
a homonym. When the collection has "orcid path" and "profile" columns, each
record also gets a suggested action.

Example:
  rvc anomalies WoS --researcher "Humbert, Marc"
  rvc config researcher "Humbert, Marc" && rvc anomalies WoS --human`,
	Args: cobra.ExactArgs(1),
	RunE: runAnomalies,
}

func runAnomalies(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	researcher := anomaliesResearcher
	if researcher == "" {
		researcher = cfg.Researcher
	}
	if researcher == "" {
		exitWithError(ExitConfigError, "no researcher name\n\nPass --researcher or run 'rvc config researcher \"Last, First\"'.")
	}

	c := mustLoadCollection(root, args[0])
	rep, err := anomaly.Check(c, researcher, anomaliesColumn)
	if err != nil {
		if errors.Is(err, anomaly.ErrMissingAuthorColumn) {
			exitWithError(ExitDataError, "%v (use --column)", err)
		}
		exitWithError(ExitError, "%v", err)
	}

	result := AnomaliesResult{Report: rep, Message: rep.Message(), Records: make([]AnomalyRecord, 0, c.Len())}
	for i := range c.Rows {
		result.Records = append(result.Records, AnomalyRecord{
			Row:     i,
			Authors: reconcile.Cell(c.Value(i, rep.Column)),
			Flagged: rep.IsFlagged(i),
			Action:  rep.SuggestAction(c, i),
		})
	}

	if !humanOutput {
		outputJSON(result)
		return nil
	}

	fmt.Println(rep.Message())
	if len(rep.Flagged) == 0 {
		return nil
	}
	titleCols := report.PrincipalColumns(c, []string{"title", "titre"})
	rows := make([][]string, 0, len(rep.Flagged))
	for _, i := range rep.Flagged {
		title := ""
		if len(titleCols) > 0 {
			title = truncateString(reconcile.Cell(c.Value(i, titleCols[0])), 60)
		}
		rows = append(rows, []string{title, result.Records[i].Authors})
	}
	fmt.Println()
	fmt.Println(report.RenderTable([]string{"Titre", "Auteurs"}, rows, nil))
	return nil
}
