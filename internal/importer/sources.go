package importer

import (
	"sort"
	"strings"
	"unicode"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
)

// ORCID exports list one row per (work, external identifier) with the
// identifier kind in "type" and its value in "value".
const (
	orcidTypeColumn  = "type"
	orcidValueColumn = "value"
)

// orcidRenames maps ORCID identifier kinds to the column names other sources
// use, so that they are classified the same way.
var orcidRenames = map[string]string{
	"doi":    "DOI",
	"wosuid": "UT (Unique WOS ID)",
	"pmid":   "Pubmed Id",
}

// orcidDropped are identifier kinds that never match another source.
var orcidDropped = map[string]bool{
	"other-id": true,
	"pmc":      true,
}

// IsORCIDLong reports whether c is an ORCID export in type/value form.
func IsORCIDLong(c *collection.Collection) bool {
	return c.HasColumn(orcidTypeColumn) && c.HasColumn(orcidValueColumn)
}

// PivotORCID turns each identifier kind into its own column: a row of type
// "doi" gets its value in a "DOI" column, and so on. Rows are sorted by type
// (stable) and keep their other columns.
func PivotORCID(c *collection.Collection) *collection.Collection {
	rows := make([]collection.Record, len(c.Rows))
	copy(rows, c.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return reconcile.Cell(rows[i][orcidTypeColumn]) < reconcile.Cell(rows[j][orcidTypeColumn])
	})

	var kinds []string
	seen := make(map[string]bool)
	for _, r := range rows {
		k := reconcile.Cell(r[orcidTypeColumn])
		if k == "" || seen[k] || orcidDropped[k] {
			continue
		}
		seen[k] = true
		kinds = append(kinds, k)
	}

	columnFor := func(kind string) string {
		if col, ok := orcidRenames[kind]; ok {
			return col
		}
		return kind
	}

	out := collection.New(c.Name, c.Columns)
	for _, k := range kinds {
		if col := columnFor(k); !out.HasColumn(col) {
			out.Columns = append(out.Columns, col)
		}
	}
	out.Rows = make([]collection.Record, 0, len(rows))
	for _, r := range rows {
		rec := make(collection.Record, len(r)+len(kinds))
		for k, v := range r {
			rec[k] = v
		}
		kind := reconcile.Cell(r[orcidTypeColumn])
		for _, k := range kinds {
			col := columnFor(k)
			if k == kind {
				rec[col] = r[orcidValueColumn]
			} else if _, ok := rec[col]; !ok {
				rec[col] = nil
			}
		}
		out.Rows = append(out.Rows, rec)
	}
	return out
}

// CleanScopusDates reduces Scopus cover dates such as "15 March 2021" to
// their trailing year. When the last word is not a number the first word is
// kept instead.
func CleanScopusDates(c *collection.Collection) {
	for _, r := range c.Rows {
		s := reconcile.Cell(r["Date"])
		if s == "" {
			continue
		}
		r["Date"] = scopusYear(s)
	}
}

func scopusYear(s string) string {
	words := strings.Split(s, " ")
	last := words[len(words)-1]
	if last != "" && strings.IndexFunc(last, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		return last
	}
	return words[0]
}
