// Package collection defines the tabular representation of one data source's
// publication records and the single ingestion step that produces it.
package collection

import (
	"errors"
	"fmt"
	"sort"
)

// Record is one publication row: column name to cell value.
// A nil value (or a NaN float) means the cell is absent.
type Record map[string]any

// Collection is a named, ordered sequence of records plus column metadata.
type Collection struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    []Record `json:"rows"`
}

// ErrNotTabular is returned when an input cannot be coerced into a Collection.
var ErrNotTabular = errors.New("input is not tabular")

// New creates an empty collection with the given columns.
func New(name string, columns []string) *Collection {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Collection{Name: name, Columns: cols}
}

// Len returns the number of records.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Rows)
}

// Empty reports whether the collection has no records.
func (c *Collection) Empty() bool {
	return c.Len() == 0
}

// HasColumn reports whether the collection declares the column.
func (c *Collection) HasColumn(name string) bool {
	for _, col := range c.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// Value returns the cell at row i, column col (nil if absent).
func (c *Collection) Value(i int, col string) any {
	if i < 0 || i >= len(c.Rows) {
		return nil
	}
	return c.Rows[i][col]
}

// Append adds a record, registering any columns not seen before.
// New columns are registered in sorted order so ingestion is deterministic.
func (c *Collection) Append(r Record) {
	var added []string
	for k := range r {
		if !c.HasColumn(k) {
			added = append(added, k)
		}
	}
	sort.Strings(added)
	c.Columns = append(c.Columns, added...)
	c.Rows = append(c.Rows, r)
}

// Select returns a new collection with the given rows, in the given order.
// Records are shared, not copied.
func (c *Collection) Select(indices []int) *Collection {
	out := New(c.Name, c.Columns)
	out.Rows = make([]Record, 0, len(indices))
	for _, i := range indices {
		out.Rows = append(out.Rows, c.Rows[i])
	}
	return out
}

// Clone returns a deep copy of the column list and row maps.
func (c *Collection) Clone() *Collection {
	out := New(c.Name, c.Columns)
	out.Rows = make([]Record, len(c.Rows))
	for i, r := range c.Rows {
		cp := make(Record, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// DropColumns returns a copy of the column list without the named columns.
func (c *Collection) DropColumns(names ...string) []string {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	var cols []string
	for _, col := range c.Columns {
		if !drop[col] {
			cols = append(cols, col)
		}
	}
	return cols
}

// FromRecords builds a collection from a list of field mappings.
// Column order follows first appearance across records.
func FromRecords(name string, records []map[string]any) *Collection {
	c := New(name, nil)
	for _, r := range records {
		c.Append(Record(r))
	}
	return c
}

// FromTable builds a collection from a header row and string rows.
// Empty cells become absent values; short rows are padded.
func FromTable(name string, header []string, rows [][]string) *Collection {
	c := New(name, header)
	c.Rows = make([]Record, 0, len(rows))
	for _, row := range rows {
		r := make(Record, len(header))
		for i, h := range header {
			if i < len(row) && row[i] != "" {
				r[h] = row[i]
			} else {
				r[h] = nil
			}
		}
		c.Rows = append(c.Rows, r)
	}
	return c
}

// Ingest normalizes any accepted input shape into a Collection.
// Accepted shapes: *Collection, Collection, []Record, []map[string]any,
// []map[string]string. An empty list yields an empty collection.
func Ingest(name string, input any) (*Collection, error) {
	switch v := input.(type) {
	case *Collection:
		if v == nil {
			return nil, fmt.Errorf("%w: %s is nil", ErrNotTabular, name)
		}
		if v.Name == "" {
			v.Name = name
		}
		return v, nil
	case Collection:
		if v.Name == "" {
			v.Name = name
		}
		return &v, nil
	case []Record:
		c := New(name, nil)
		for _, r := range v {
			c.Append(r)
		}
		return c, nil
	case []map[string]any:
		return FromRecords(name, v), nil
	case []map[string]string:
		c := New(name, nil)
		for _, r := range v {
			rec := make(Record, len(r))
			for k, s := range r {
				rec[k] = s
			}
			c.Append(rec)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %s has type %T", ErrNotTabular, name, input)
	}
}
