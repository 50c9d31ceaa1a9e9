package extract

import (
	"errors"
	"fmt"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/identifier"
)

// ErrMissingColumn indicates a collection lacks an identifier column.
// It is a warning: extraction continues with the remaining identifier types.
var ErrMissingColumn = errors.New("missing identifier column")

// ErrRowCoercion indicates one cell could not be turned into an identifier.
var ErrRowCoercion = errors.New("row-level identifier coercion failed")

// MissingColumnError reports that no column of the given type was found.
type MissingColumnError struct {
	Collection string
	Type       identifier.Type
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("no %s column found in %s", e.Type, e.Collection)
}

func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// RowLevelComparisonError reports a cell skipped during extraction.
type RowLevelComparisonError struct {
	Collection string
	Row        int // 0-indexed
	Column     string
	Err        error
}

func (e *RowLevelComparisonError) Error() string {
	return fmt.Sprintf("%s row %d column %q: %v", e.Collection, e.Row, e.Column, e.Err)
}

func (e *RowLevelComparisonError) Unwrap() error {
	return e.Err
}

func (e *RowLevelComparisonError) Is(target error) bool {
	return target == ErrRowCoercion
}
