package collection

import (
	"errors"
	"reflect"
	"testing"
)

func TestFromRecords_ColumnOrder(t *testing.T) {
	c := FromRecords("ORCID", []map[string]any{
		{"title": "A", "doi": "10.1/a"},
		{"title": "B", "year": 2020, "doi": nil},
	})

	want := []string{"doi", "title", "year"}
	if !reflect.DeepEqual(c.Columns, want) {
		t.Errorf("Columns = %v, want %v", c.Columns, want)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if c.Value(1, "year") != 2020 {
		t.Errorf("Value(1, year) = %v", c.Value(1, "year"))
	}
	if c.Value(0, "year") != nil || c.Value(9, "doi") != nil {
		t.Error("missing cells should be nil")
	}
}

func TestFromTable_PadsAndBlanks(t *testing.T) {
	c := FromTable("Scopus", []string{"Title", "DOI", "Year"}, [][]string{
		{"A", "", "2021"},
		{"B"},
	})

	if c.Value(0, "DOI") != nil {
		t.Errorf("empty cell = %v, want nil", c.Value(0, "DOI"))
	}
	if c.Value(1, "Year") != nil {
		t.Errorf("padded cell = %v, want nil", c.Value(1, "Year"))
	}
	if c.Value(0, "Year") != "2021" {
		t.Errorf("Value(0, Year) = %v", c.Value(0, "Year"))
	}
}

func TestIngest(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		wantLen int
		wantErr bool
	}{
		{"collection pointer", FromTable("X", []string{"a"}, [][]string{{"1"}}), 1, false},
		{"collection value", *New("X", []string{"a"}), 0, false},
		{"records", []Record{{"a": 1}, {"a": 2}}, 2, false},
		{"maps", []map[string]any{{"a": 1}}, 1, false},
		{"string maps", []map[string]string{{"a": "1"}, {"b": "2"}}, 2, false},
		{"empty list", []map[string]any{}, 0, false},
		{"nil pointer", (*Collection)(nil), 0, true},
		{"scalar", 42, 0, true},
		{"nil", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Ingest("HAL", tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNotTabular) {
					t.Errorf("Ingest() error = %v, want ErrNotTabular", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Ingest() error = %v", err)
			}
			if c.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", c.Len(), tt.wantLen)
			}
			if c.Name == "" {
				t.Error("Ingest() left the collection unnamed")
			}
		})
	}
}

func TestSelectAndDropColumns(t *testing.T) {
	c := FromTable("X", []string{"a", "b", "c"}, [][]string{{"1", "2", "3"}, {"4", "5", "6"}, {"7", "8", "9"}})

	sel := c.Select([]int{2, 0})
	if sel.Len() != 2 || sel.Value(0, "a") != "7" || sel.Value(1, "a") != "1" {
		t.Errorf("Select() rows = %v", sel.Rows)
	}
	if got := c.DropColumns("b", "zz"); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("DropColumns() = %v", got)
	}
}

func TestClone_Independent(t *testing.T) {
	c := FromTable("X", []string{"a"}, [][]string{{"1"}})
	cp := c.Clone()
	cp.Rows[0]["a"] = "changed"
	cp.Columns[0] = "z"

	if c.Value(0, "a") != "1" || c.Columns[0] != "a" {
		t.Error("Clone() shares state with the original")
	}
}

func TestNilCollection(t *testing.T) {
	var c *Collection
	if c.Len() != 0 || !c.Empty() {
		t.Error("nil collection should be empty")
	}
}
