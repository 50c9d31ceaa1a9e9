// Package extract finds identifier columns in a collection and builds, for
// each record, the set of normalized identifiers it carries.
package extract

import (
	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/identifier"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/logger"
)

// AllIDsColumn is the name of the derived identifier-set column.
const AllIDsColumn = "all_ids"

// Result is a collection annotated with per-record identifier sets.
type Result struct {
	Collection *collection.Collection
	Columns    []ColumnMatch

	// IDs holds, per record and in extraction order, the normalized
	// identifiers. A nil entry is the "no identifiers" sentinel.
	IDs [][]string

	// Warnings holds non-fatal problems: *MissingColumnError and
	// *RowLevelComparisonError values.
	Warnings []error
}

// HasIDs reports whether record i carries at least one identifier.
func (r *Result) HasIDs(i int) bool {
	return i >= 0 && i < len(r.IDs) && len(r.IDs[i]) > 0
}

// Index returns the union of every record's identifiers.
func (r *Result) Index() map[string]struct{} {
	idx := make(map[string]struct{})
	for _, ids := range r.IDs {
		for _, id := range ids {
			idx[id] = struct{}{}
		}
	}
	return idx
}

// RowErrors returns how many cells were skipped because they could not be coerced.
func (r *Result) RowErrors() int {
	n := 0
	for _, w := range r.Warnings {
		if _, ok := w.(*RowLevelComparisonError); ok {
			n++
		}
	}
	return n
}

// Extractor annotates collections with identifier sets.
type Extractor struct {
	classifier *Classifier
	logger     *logger.Logger
}

// New creates an Extractor. A nil classifier uses DefaultRules.
func New(classifier *Classifier, log *logger.Logger) *Extractor {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	return &Extractor{classifier: classifier, logger: logger.OrNop(log)}
}

// Classifier returns the column classifier in use.
func (e *Extractor) Classifier() *Classifier {
	return e.classifier
}

// Extract computes the identifier set of every record of c.
// A nil collection yields an empty result.
func (e *Extractor) Extract(c *collection.Collection) *Result {
	if c == nil {
		c = collection.New("", nil)
	}
	res := &Result{Collection: c, IDs: make([][]string, c.Len())}
	if c.Empty() {
		return res
	}

	res.Columns = e.classifier.IdentifierColumns(c.Columns)
	if !hasType(res.Columns, identifier.TypeDOI) {
		w := &MissingColumnError{Collection: c.Name, Type: identifier.TypeDOI}
		res.Warnings = append(res.Warnings, w)
		e.logger.Warn("identifier column missing, matching on remaining types",
			"collection", c.Name, "type", identifier.TypeDOI)
	}
	if len(res.Columns) == 0 {
		return res
	}

	for i, row := range c.Rows {
		var ids []string
		for _, col := range res.Columns {
			id, ok, err := identifier.Normalize(row[col.Column], col.Type)
			if err != nil {
				res.Warnings = append(res.Warnings, &RowLevelComparisonError{
					Collection: c.Name, Row: i, Column: col.Column, Err: err,
				})
				continue
			}
			if ok {
				ids = append(ids, id)
			}
		}
		res.IDs[i] = ids
	}

	if n := res.RowErrors(); n > 0 {
		e.logger.Warn("skipped identifier cells that could not be coerced",
			"collection", c.Name, "cells", n)
	}
	return res
}

func hasType(cols []ColumnMatch, t identifier.Type) bool {
	for _, c := range cols {
		if c.Type == t {
			return true
		}
	}
	return false
}
