package extract

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/identifier"
)

func TestExtract_AllIDs(t *testing.T) {
	c := collection.New("HAL", []string{"Title_article", "DOI", "pubmedId"})
	c.Rows = []collection.Record{
		{"Title_article": "A", "DOI": "https://doi.org/10.1/X", "pubmedId": "111"},
		{"Title_article": "B", "DOI": nil, "pubmedId": 222.0},
		{"Title_article": "C", "DOI": "", "pubmedId": "[]"},
		{"Title_article": "D", "DOI": math.NaN(), "pubmedId": nil},
	}

	res := New(nil, nil).Extract(c)

	want := [][]string{
		{"10.1/x", "111"},
		{"222"},
		nil,
		nil,
	}
	if !reflect.DeepEqual(res.IDs, want) {
		t.Errorf("IDs = %#v, want %#v", res.IDs, want)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if !res.HasIDs(0) || res.HasIDs(2) {
		t.Error("HasIDs mismatch")
	}
}

func TestExtract_EveryRowAnnotated(t *testing.T) {
	c := collection.New("X", []string{"doi", "other"})
	for i := 0; i < 5; i++ {
		c.Rows = append(c.Rows, collection.Record{"doi": nil, "other": "x"})
	}
	c.Rows[3]["doi"] = "10.5/abc"

	res := New(nil, nil).Extract(c)
	if len(res.IDs) != c.Len() {
		t.Fatalf("len(IDs) = %d, want %d", len(res.IDs), c.Len())
	}
	for i, ids := range res.IDs {
		if ids != nil && len(ids) == 0 {
			t.Errorf("row %d: empty non-nil identifier list", i)
		}
		for _, id := range ids {
			if id == "" || id == "[]" {
				t.Errorf("row %d: absent marker %q leaked into ids", i, id)
			}
		}
	}
}

func TestExtract_NoIdentifierColumns(t *testing.T) {
	c := collection.New("Plain", []string{"Title", "Year"})
	c.Rows = []collection.Record{{"Title": "A", "Year": "2020"}}

	res := New(nil, nil).Extract(c)
	if res.IDs[0] != nil {
		t.Errorf("IDs[0] = %v, want sentinel", res.IDs[0])
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], ErrMissingColumn) {
		t.Errorf("Warnings = %v, want one MissingColumnError", res.Warnings)
	}
}

func TestExtract_EmptyAndNil(t *testing.T) {
	e := New(nil, nil)

	res := e.Extract(collection.New("Empty", []string{"DOI"}))
	if len(res.IDs) != 0 || len(res.Warnings) != 0 {
		t.Errorf("empty collection: IDs=%v warnings=%v", res.IDs, res.Warnings)
	}

	res = e.Extract(nil)
	if res.Collection == nil || len(res.IDs) != 0 {
		t.Error("nil collection should yield an empty result")
	}
}

func TestExtract_RowLevelFailureIsNotFatal(t *testing.T) {
	c := collection.New("S", []string{"DOI", "Pubmed Id"})
	c.Rows = []collection.Record{
		{"DOI": []string{"10.1/a", "10.1/b"}, "Pubmed Id": "7"},
		{"DOI": map[string]any{"x": 1}, "Pubmed Id": nil},
	}

	res := New(nil, nil).Extract(c)
	if !reflect.DeepEqual(res.IDs[0], []string{"7"}) {
		t.Errorf("IDs[0] = %v, want [7]", res.IDs[0])
	}
	if res.IDs[1] != nil {
		t.Errorf("IDs[1] = %v, want sentinel", res.IDs[1])
	}
	if res.RowErrors() != 2 {
		t.Errorf("RowErrors() = %d, want 2", res.RowErrors())
	}
	var rowErr *RowLevelComparisonError
	if !errors.As(res.Warnings[0], &rowErr) || rowErr.Row != 0 || rowErr.Column != "DOI" {
		t.Errorf("Warnings[0] = %v", res.Warnings[0])
	}
	if !errors.Is(res.Warnings[0], identifier.ErrUnsupportedValue) {
		t.Error("row error should unwrap to ErrUnsupportedValue")
	}
}

func TestExtract_ExtractionOrderFollowsColumns(t *testing.T) {
	c := collection.New("WoS", []string{"Pubmed Id", "UT (Unique WOS ID)", "DOI"})
	c.Rows = []collection.Record{{"Pubmed Id": "9", "UT (Unique WOS ID)": "WOS:1", "DOI": "10.9/Z"}}

	res := New(nil, nil).Extract(c)
	want := []string{"9", "WOS:1", "10.9/z"}
	if !reflect.DeepEqual(res.IDs[0], want) {
		t.Errorf("IDs[0] = %v, want %v", res.IDs[0], want)
	}
}

func TestExtract_CustomRules(t *testing.T) {
	cls, err := NewClassifier([]Rule{
		{Pattern: "PMC", Type: identifier.TypeORCIDPMC},
		{Pattern: "doi", Type: identifier.TypeDOI},
	})
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}
	c := collection.New("Orcid", []string{"pmc", "DOI", "pubmed"})
	c.Rows = []collection.Record{{"pmc": "PMC123", "DOI": "DOI:10.2/Q", "pubmed": "5"}}

	res := New(cls, nil).Extract(c)
	want := []string{"PMC123", "10.2/q"}
	if !reflect.DeepEqual(res.IDs[0], want) {
		t.Errorf("IDs[0] = %v, want %v", res.IDs[0], want)
	}
}

func TestExtract_Index(t *testing.T) {
	c := collection.New("T", []string{"doi"})
	c.Rows = []collection.Record{{"doi": "10.1/a"}, {"doi": "10.1/A"}, {"doi": nil}}

	idx := New(nil, nil).Extract(c).Index()
	if len(idx) != 1 {
		t.Errorf("len(Index()) = %d, want 1", len(idx))
	}
	if _, ok := idx["10.1/a"]; !ok {
		t.Error("Index() missing 10.1/a")
	}
}
