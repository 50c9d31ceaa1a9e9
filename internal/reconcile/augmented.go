package reconcile

import (
	"strconv"
	"strings"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/extract"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/identifier"
)

// Prefixes of the derived columns appended to a reconciled source.
const (
	InColumnPrefix       = "in_"
	MatchingColumnPrefix = "matching_id_"
	StatusColumnPrefix   = "statut_"
)

// Augmented is a source collection annotated against one target.
// The source collection itself is never modified; derived values live in
// parallel slices indexed by row.
type Augmented struct {
	Source *collection.Collection
	Target string

	IDs        [][]string // nil entry: no identifiers
	Matched    []bool
	MatchingID []string // "" when unmatched
}

func newAugmented(src *extract.Result, target string) *Augmented {
	n := src.Collection.Len()
	return &Augmented{
		Source:     src.Collection,
		Target:     target,
		IDs:        src.IDs,
		Matched:    make([]bool, n),
		MatchingID: make([]string, n),
	}
}

func targetSuffix(target string) string {
	return strings.ToLower(target)
}

// InColumn is the name of the match-flag column, e.g. "in_orcid".
func (a *Augmented) InColumn() string {
	return InColumnPrefix + targetSuffix(a.Target)
}

// MatchingColumn is the name of the matched-identifier column.
func (a *Augmented) MatchingColumn() string {
	return MatchingColumnPrefix + targetSuffix(a.Target)
}

// StatusColumn is the name of the status label column.
func (a *Augmented) StatusColumn() string {
	return StatusColumnPrefix + targetSuffix(a.Target)
}

// DerivedColumns lists the appended columns in output order.
func (a *Augmented) DerivedColumns() []string {
	return []string{extract.AllIDsColumn, a.InColumn(), a.MatchingColumn(), a.StatusColumn()}
}

// Len returns the number of source records.
func (a *Augmented) Len() int {
	return len(a.Matched)
}

// Status returns the human-readable status of record i.
func (a *Augmented) Status(i int) string {
	if a.Matched[i] {
		return StatusIn(a.Target)
	}
	return StatusNotIn(a.Target)
}

// StatusIn is the label of a record found in target.
func StatusIn(target string) string {
	return "Dans " + target
}

// StatusNotIn is the label of a record missing from target.
func StatusNotIn(target string) string {
	return "Pas dans " + target
}

// MatchedRows returns the indices of matched records, in order.
func (a *Augmented) MatchedRows() []int {
	return a.rows(true)
}

// UnmatchedRows returns the indices of unmatched records, in order.
func (a *Augmented) UnmatchedRows() []int {
	return a.rows(false)
}

func (a *Augmented) rows(matched bool) []int {
	var out []int
	for i, m := range a.Matched {
		if m == matched {
			out = append(out, i)
		}
	}
	return out
}

// MatchedCount returns how many source records were found in the target.
func (a *Augmented) MatchedCount() int {
	n := 0
	for _, m := range a.Matched {
		if m {
			n++
		}
	}
	return n
}

// Columns returns the original columns followed by the derived ones.
// A derived name may repeat an original name; the derived column is then the
// later one and DisplayColumns is what callers should show.
func (a *Augmented) Columns() []string {
	cols := make([]string, 0, len(a.Source.Columns)+4)
	cols = append(cols, a.Source.Columns...)
	return append(cols, a.DerivedColumns()...)
}

// DisplayColumns returns the original columns without any derived name.
func (a *Augmented) DisplayColumns() []string {
	return a.Source.DropColumns(append(a.DerivedColumns(), "Unnamed: 0")...)
}

// Table flattens the augmented collection to string cells, header first.
func (a *Augmented) Table() ([]string, [][]string) {
	header := a.Columns()
	rows := make([][]string, a.Len())
	for i := range rows {
		row := make([]string, 0, len(header))
		for _, col := range a.Source.Columns {
			row = append(row, Cell(a.Source.Rows[i][col]))
		}
		row = append(row,
			strings.Join(a.IDs[i], "; "),
			strconv.FormatBool(a.Matched[i]),
			a.MatchingID[i],
			a.Status(i),
		)
		rows[i] = row
	}
	return header, rows
}

// Cell renders a cell value for display or export; absent values are "".
func Cell(v any) string {
	s, ok, err := identifier.Stringify(v)
	if err != nil || !ok {
		return ""
	}
	return s
}
