package report

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
)

func TestRecapRows(t *testing.T) {
	rows := RecapRows([]reconcile.RecapEntry{
		{Source: "HAL", Target: "ORCID", SourceTotal: 10, TargetTotal: 10, Common: 5, Coverage: 100.0 / 3},
	})
	want := [][]string{{"HAL", "ORCID", "10", "10", "5", "33.33%"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("RecapRows() = %v, want %v", rows, want)
	}
}

func TestRecapTable_RendersHeaders(t *testing.T) {
	out := RecapTable([]reconcile.RecapEntry{{Source: "A", Target: "B", Coverage: 50}})
	for _, h := range []string{"Base 1", "Publications communes", "50.00%"} {
		if !strings.Contains(out, h) {
			t.Errorf("RecapTable() missing %q:\n%s", h, out)
		}
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(nil, nil, nil); got != "" {
		t.Errorf("RenderTable(nil) = %q, want empty", got)
	}
}

func fixtures() (*collection.Collection, *collection.Collection) {
	a := collection.New("HAL", []string{"Title_article", "DOI", "halId_s"})
	a.Rows = []collection.Record{
		{"Title_article": "Shared", "DOI": "10.1/s", "halId_s": "hal-1"},
		{"Title_article": "Only HAL", "DOI": "10.1/h", "halId_s": "hal-2"},
		{"Title_article": "Only HAL", "DOI": "10.1/h", "halId_s": "hal-3"},
	}
	b := collection.New("ORCID", []string{"Title_article", "doi"})
	b.Rows = []collection.Record{
		{"Title_article": "Shared", "doi": "https://doi.org/10.1/S"},
		{"Title_article": "Only ORCID", "doi": "10.1/o"},
	}
	return a, b
}

func TestDrillDown(t *testing.T) {
	a, b := fixtures()

	p, err := DrillDown(reconcile.New(), a, b)
	if err != nil {
		t.Fatalf("DrillDown() error = %v", err)
	}
	if p.OnlyA.Len() != 2 || p.OnlyB.Len() != 1 || p.Common.Len() != 1 {
		t.Errorf("partition sizes = %d/%d/%d, want 2/1/1", p.OnlyA.Len(), p.OnlyB.Len(), p.Common.Len())
	}
	if p.Common.Value(0, "Title_article") != "Shared" {
		t.Errorf("Common[0] = %v", p.Common.Rows[0])
	}
	if p.Forward.Matched != p.Backward.Matched {
		t.Errorf("forward %d != backward %d", p.Forward.Matched, p.Backward.Matched)
	}
}

func TestUnique_DropsDuplicates(t *testing.T) {
	a, b := fixtures()
	p, err := DrillDown(reconcile.New(), a, b)
	if err != nil {
		t.Fatalf("DrillDown() error = %v", err)
	}

	u, ok := Unique(p, nil)
	if !ok {
		t.Fatal("Unique() found no principal columns")
	}
	if !reflect.DeepEqual(u.Columns, []string{"Title_article", "DOI", "doi"}) {
		t.Errorf("Columns = %v", u.Columns)
	}
	// The two "Only HAL" rows differ only by halId_s, which is not principal.
	if u.Len() != 3 {
		t.Errorf("Len() = %d, want 3: %v", u.Len(), u.Rows)
	}
}

func TestUnique_NoPrincipalColumns(t *testing.T) {
	a := collection.New("A", []string{"pubmed"})
	a.Rows = []collection.Record{{"pubmed": "1"}}
	b := collection.New("B", []string{"pubmed"})
	b.Rows = []collection.Record{{"pubmed": "2"}}

	p, err := DrillDown(reconcile.New(), a, b)
	if err != nil {
		t.Fatalf("DrillDown() error = %v", err)
	}
	if u, ok := Unique(p, nil); ok || u != nil {
		t.Errorf("Unique() = (%v, %v), want (nil, false)", u, ok)
	}
}

func TestPrincipalColumns_CaseFolded(t *testing.T) {
	c := collection.New("WoS", []string{"Article Title", "Author Full Names", "Publication Year", "UT (Unique WOS ID)", "Source Title"})
	got := PrincipalColumns(c, DefaultPrincipalColumns)
	want := []string{"Article Title", "Author Full Names", "Publication Year", "Source Title"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PrincipalColumns() = %v, want %v", got, want)
	}
}

func TestYearDistribution(t *testing.T) {
	c := collection.New("Scopus", []string{"Date"})
	c.Rows = []collection.Record{
		{"Date": "2021"},
		{"Date": "15 March 2021"},
		{"Date": 2019.0},
		{"Date": nil},
		{"Date": "Spring"},
	}

	got, col, ok := YearDistribution(c)
	if !ok || col != "Date" {
		t.Fatalf("YearDistribution() column = %q, %v", col, ok)
	}
	want := []YearCount{{"2019", 1}, {"2021", 2}, {"Spring", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("YearDistribution() = %v, want %v", got, want)
	}
}

func TestYearDistribution_NoDateColumn(t *testing.T) {
	if _, _, ok := YearDistribution(collection.New("X", []string{"Title"})); ok {
		t.Error("YearDistribution() should report no date column")
	}
}

func TestSummary(t *testing.T) {
	got := Summary(&reconcile.Stats{Source: "HAL", Target: "WoS", SourceTotal: 4, Matched: 1, Coverage: 25})
	if got != "1/4 publications de HAL sont dans WoS (25.00%)" {
		t.Errorf("Summary() = %q", got)
	}
}
