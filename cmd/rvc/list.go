package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/config"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/report"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/storage"
)

// CollectionListItem represents a collection in list output.
type CollectionListItem struct {
	Name       string `json:"name"`
	Rows       int    `json:"rows"`
	Columns    int    `json:"columns"`
	Format     string `json:"format,omitempty"`
	Source     string `json:"source,omitempty"`
	ImportedAt string `json:"imported_at"`
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored collections",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a stored collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func runList(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()

	metas, err := storage.ListSnapshots(config.CollectionsPath(root))
	if err != nil {
		exitWithError(ExitError, "listing collections: %v", err)
	}

	items := make([]CollectionListItem, 0, len(metas))
	for _, m := range metas {
		items = append(items, CollectionListItem{
			Name:       m.Name,
			Rows:       m.Rows,
			Columns:    len(m.Columns),
			Format:     m.Format,
			Source:     m.Source,
			ImportedAt: m.ImportedAt.Format("2006-01-02 15:04"),
		})
	}

	if !humanOutput {
		outputJSON(items)
		return nil
	}
	if len(items) == 0 {
		fmt.Println("No collections (add one with 'rvc add <file>')")
		return nil
	}

	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{it.Name, strconv.Itoa(it.Rows), strconv.Itoa(it.Columns), it.Format, it.ImportedAt}
	}
	fmt.Println(report.RenderTable(
		[]string{"Name", "Records", "Columns", "Format", "Imported"},
		rows,
		[]report.Alignment{report.AlignLeft, report.AlignRight, report.AlignRight},
	))
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	lock := mustAcquireLock(root)
	defer lock.Release()

	if err := storage.DeleteSnapshot(config.CollectionsPath(root), args[0]); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Removed %s\n", args[0])
	} else {
		outputJSON(StatusResponse{Status: "removed", Path: storage.SnapshotPath(config.CollectionsPath(root), args[0])})
	}
	return nil
}
