package reconcile

import (
	"fmt"
	"strings"
)

// CoverageMode selects how a recap entry's headline percentage is computed.
type CoverageMode string

const (
	// CoverageSymmetric divides the common count by the size of the union:
	// source total + target total - common.
	CoverageSymmetric CoverageMode = "symmetric"

	// CoverageSource divides the common count by the source total.
	CoverageSource CoverageMode = "source"
)

// ParseCoverageMode converts a config or flag value to a CoverageMode.
// The empty string selects CoverageSymmetric.
func ParseCoverageMode(s string) (CoverageMode, error) {
	switch CoverageMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", CoverageSymmetric:
		return CoverageSymmetric, nil
	case CoverageSource:
		return CoverageSource, nil
	default:
		return "", fmt.Errorf("invalid coverage mode %q (valid: %s, %s)", s, CoverageSymmetric, CoverageSource)
	}
}

// RecapEntry summarizes the overlap of one pair of collections.
// Both coverage metrics are always computed; Coverage repeats the one
// selected by Mode.
type RecapEntry struct {
	Source         string       `json:"source"`
	Target         string       `json:"target"`
	SourceTotal    int          `json:"source_total"`
	TargetTotal    int          `json:"target_total"`
	Common         int          `json:"common"`
	Mode           CoverageMode `json:"mode"`
	Coverage       float64      `json:"coverage"`
	Symmetric      float64      `json:"symmetric_coverage"`
	SourceRelative float64      `json:"source_coverage"`
}

func newRecapEntry(s *Stats, mode CoverageMode) RecapEntry {
	e := RecapEntry{
		Source:         s.Source,
		Target:         s.Target,
		SourceTotal:    s.SourceTotal,
		TargetTotal:    s.TargetTotal,
		Common:         s.Matched,
		Mode:           mode,
		Symmetric:      SymmetricCoverage(s.Matched, s.SourceTotal, s.TargetTotal),
		SourceRelative: percent(s.Matched, s.SourceTotal),
	}
	e.Coverage = e.Rate(mode)
	return e
}

// Rate returns the coverage percentage for the given mode.
func (e RecapEntry) Rate(mode CoverageMode) float64 {
	if mode == CoverageSource {
		return e.SourceRelative
	}
	return e.Symmetric
}

// SymmetricCoverage returns common / (sourceTotal + targetTotal - common) in
// percent. When duplicate identifiers make common exceed the target total the
// union is floored at common, so the result never exceeds 100.
func SymmetricCoverage(common, sourceTotal, targetTotal int) float64 {
	union := sourceTotal + targetTotal - common
	if union < common {
		union = common
	}
	return percent(common, union)
}
