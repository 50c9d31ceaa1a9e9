package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrConfiguration indicates the requested reconciliation cannot start:
	// too few collections, or a collection that is not tabular.
	ErrConfiguration = errors.New("configuration error")

	// ErrEmptyTarget indicates the target collection has no records.
	ErrEmptyTarget = errors.New("empty target collection")

	// ErrPairFailed indicates one pair of a batch failed.
	ErrPairFailed = errors.New("pair comparison failed")
)

// ConfigurationError describes why a reconciliation request was rejected.
type ConfigurationError struct {
	Side   string   // "source" or "target" for pairwise requests
	Names  []string // offending collection names for batch requests
	Reason string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Side != "" {
		b.WriteString(": ")
		b.WriteString(e.Side)
	}
	if len(e.Names) > 0 {
		fmt.Fprintf(&b, ": invalid collection(s) %s", strings.Join(e.Names, ", "))
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// EmptyTargetWarning is recorded when the target collection has no records.
// Every source record is then reported unmatched.
type EmptyTargetWarning struct {
	Source string
	Target string
}

func (e *EmptyTargetWarning) Error() string {
	return fmt.Sprintf("target collection %s is empty, no record of %s can match", e.Target, e.Source)
}

func (e *EmptyTargetWarning) Is(target error) bool {
	return target == ErrEmptyTarget
}

// PairComparisonError records a failed pair inside a batch.
type PairComparisonError struct {
	Source string
	Target string
	Err    error
}

func (e *PairComparisonError) Error() string {
	return fmt.Sprintf("comparing %s with %s: %v", e.Source, e.Target, e.Err)
}

func (e *PairComparisonError) Unwrap() error {
	return e.Err
}

func (e *PairComparisonError) Is(target error) bool {
	return target == ErrPairFailed
}
