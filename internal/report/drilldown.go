package report

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
)

// DefaultPrincipalColumns are the substrings that mark a column as part of
// the reduced "principal" schema used by the unique view.
var DefaultPrincipalColumns = []string{"title", "titre", "author", "auteur", "year", "date", "doi", "journal"}

// NoPrincipalColumnsMessage is shown instead of a unique view when neither
// collection has a principal column.
const NoPrincipalColumnsMessage = "Aucune colonne principale (titre, auteur, année, doi, journal) n'a été trouvée, la vue des publications uniques n'est pas disponible."

// Partition splits two collections into what only one side holds and what
// both hold.
type Partition struct {
	A, B string

	OnlyA  *collection.Collection
	OnlyB  *collection.Collection
	Common *collection.Collection // rows of A found in B

	Forward  *reconcile.Stats // A compared against B
	Backward *reconcile.Stats // B compared against A
}

// DrillDown compares a against b in both directions.
func DrillDown(r *reconcile.Reconciler, a, b *collection.Collection) (*Partition, error) {
	ab, fwd, err := r.Pair(a, b)
	if err != nil {
		return nil, err
	}
	ba, bwd, err := r.Pair(b, a)
	if err != nil {
		return nil, err
	}

	return &Partition{
		A:        a.Name,
		B:        b.Name,
		OnlyA:    a.Select(ab.UnmatchedRows()),
		OnlyB:    b.Select(ba.UnmatchedRows()),
		Common:   a.Select(ab.MatchedRows()),
		Forward:  fwd,
		Backward: bwd,
	}, nil
}

// PrincipalColumns returns the columns of c whose case-folded name contains
// one of the patterns, in column order.
func PrincipalColumns(c *collection.Collection, patterns []string) []string {
	fold := cases.Fold()
	folded := make([]string, len(patterns))
	for i, p := range patterns {
		folded[i] = fold.String(p)
	}

	var out []string
	for _, col := range c.Columns {
		name := fold.String(col)
		for _, p := range folded {
			if strings.Contains(name, p) {
				out = append(out, col)
				break
			}
		}
	}
	return out
}

// Unique concatenates the three partitions on their principal columns and
// drops exact duplicate rows. The boolean is false when no principal column
// exists on either side; the caller should then show NoPrincipalColumnsMessage.
func Unique(p *Partition, patterns []string) (*collection.Collection, bool) {
	if len(patterns) == 0 {
		patterns = DefaultPrincipalColumns
	}

	var columns []string
	seen := make(map[string]bool)
	for _, c := range []*collection.Collection{p.OnlyA, p.Common, p.OnlyB} {
		for _, col := range PrincipalColumns(c, patterns) {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}
	if len(columns) == 0 {
		return nil, false
	}

	out := collection.New(p.A+"+"+p.B, columns)
	keys := make(map[string]bool)
	for _, c := range []*collection.Collection{p.OnlyA, p.Common, p.OnlyB} {
		for _, row := range c.Rows {
			rec := make(collection.Record, len(columns))
			cells := make([]string, len(columns))
			for i, col := range columns {
				rec[col] = row[col]
				cells[i] = reconcile.Cell(row[col])
			}
			key := strings.Join(cells, "\x1f")
			if keys[key] {
				continue
			}
			keys[key] = true
			out.Rows = append(out.Rows, rec)
		}
	}
	return out, true
}
