package report

import (
	"regexp"
	"sort"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
)

// DateColumns are the publication-date column names known per source, in
// lookup order.
var DateColumns = []string{"Year", "year", "Date", "publicationDate_s", "Publication Year"}

var yearRegex = regexp.MustCompile(`\b(1[89]\d{2}|2\d{3})\b`)

// YearCount is the number of publications of one year.
type YearCount struct {
	Year  string `json:"year"`
	Count int    `json:"count"`
}

// DateColumn returns the first known date column of c.
func DateColumn(c *collection.Collection) (string, bool) {
	for _, name := range DateColumns {
		if c.HasColumn(name) {
			return name, true
		}
	}
	return "", false
}

// YearOf extracts the publication year from a date cell. Cells without a
// recognizable year are returned as written.
func YearOf(v any) string {
	s := reconcile.Cell(v)
	if m := yearRegex.FindString(s); m != "" {
		return m
	}
	return s
}

// YearDistribution counts publications per year, sorted by year.
// Records with an empty date are skipped.
func YearDistribution(c *collection.Collection) ([]YearCount, string, bool) {
	col, ok := DateColumn(c)
	if !ok {
		return nil, "", false
	}

	counts := make(map[string]int)
	for _, row := range c.Rows {
		if y := YearOf(row[col]); y != "" {
			counts[y]++
		}
	}

	out := make([]YearCount, 0, len(counts))
	for y, n := range counts {
		out = append(out, YearCount{Year: y, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, col, true
}
