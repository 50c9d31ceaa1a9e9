// Package report turns reconciliation results into presentable tables:
// the coverage recap, per-pair drill-downs, the deduplicated union view and
// the year distribution of a collection.
package report

import (
	"fmt"
	"strconv"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
)

// RecapHeaders are the column titles of the coverage recap table.
var RecapHeaders = []string{
	"Base 1",
	"Base 2",
	"Total articles base 1",
	"Total articles base 2",
	"Publications communes",
	"Taux de recouvrement",
}

// FormatPercent renders a coverage percentage with two decimals, e.g. "33.33%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// RecapRows converts recap entries into table rows aligned with RecapHeaders.
// The percentage column shows each entry's headline coverage.
func RecapRows(entries []reconcile.RecapEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Source,
			e.Target,
			strconv.Itoa(e.SourceTotal),
			strconv.Itoa(e.TargetTotal),
			strconv.Itoa(e.Common),
			FormatPercent(e.Coverage),
		})
	}
	return rows
}

// RecapTable renders the recap for a terminal.
func RecapTable(entries []reconcile.RecapEntry) string {
	return RenderTable(RecapHeaders, RecapRows(entries),
		[]Alignment{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight})
}

// Summary is the one-line description of a pairwise comparison.
func Summary(s *reconcile.Stats) string {
	return fmt.Sprintf("%d/%d publications de %s sont dans %s (%s)",
		s.Matched, s.SourceTotal, s.Source, s.Target, FormatPercent(s.Coverage))
}
