package extract

import (
	"fmt"
	"strings"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/identifier"
	"golang.org/x/text/cases"
)

// Rule maps a column-name substring to the identifier type the column holds.
type Rule struct {
	Pattern string          `json:"pattern" yaml:"pattern" toml:"pattern"`
	Type    identifier.Type `json:"type" yaml:"type" toml:"type"`
}

// DefaultRules matches the column naming of HAL, ORCID, Scopus and WoS exports.
var DefaultRules = []Rule{
	{Pattern: "doi", Type: identifier.TypeDOI},
	{Pattern: "scopus_id", Type: identifier.TypeScopus},
	{Pattern: "pubmed", Type: identifier.TypePubMed},
	{Pattern: "wos", Type: identifier.TypeWoS},
	{Pattern: "ut (unique", Type: identifier.TypeWoS},
}

// Classifier decides which columns carry identifiers. Rules are tried in
// order against the case-folded column name; the first substring hit wins.
// A Classifier is not safe for concurrent use.
type Classifier struct {
	rules []Rule
	fold  cases.Caser
}

// ColumnMatch records that a column was classified as an identifier column.
type ColumnMatch struct {
	Column  string          `json:"column"`
	Type    identifier.Type `json:"type"`
	Pattern string          `json:"pattern"`
}

// NewClassifier validates and compiles classification rules.
func NewClassifier(rules []Rule) (*Classifier, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("at least one identifier rule is required")
	}
	fold := cases.Fold()
	compiled := make([]Rule, len(rules))
	for i, r := range rules {
		if strings.TrimSpace(r.Pattern) == "" {
			return nil, fmt.Errorf("rule %d: empty pattern", i+1)
		}
		if _, err := identifier.ParseType(string(r.Type)); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		compiled[i] = Rule{Pattern: fold.String(r.Pattern), Type: r.Type}
	}
	return &Classifier{rules: compiled, fold: fold}, nil
}

// DefaultClassifier returns a classifier using DefaultRules.
func DefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultRules)
	if err != nil {
		panic(err) // DefaultRules are static
	}
	return c
}

// Rules returns a copy of the compiled rules.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify returns the identifier type of a column, if any.
func (c *Classifier) Classify(column string) (ColumnMatch, bool) {
	name := c.fold.String(column)
	for _, r := range c.rules {
		if strings.Contains(name, r.Pattern) {
			return ColumnMatch{Column: column, Type: r.Type, Pattern: r.Pattern}, true
		}
	}
	return ColumnMatch{}, false
}

// IdentifierColumns returns the identifier-bearing columns in column order.
func (c *Classifier) IdentifierColumns(columns []string) []ColumnMatch {
	var matches []ColumnMatch
	for _, col := range columns {
		if m, ok := c.Classify(col); ok {
			matches = append(matches, m)
		}
	}
	return matches
}

// Mapping is a best-guess assignment of well-known concepts to columns.
type Mapping struct {
	DOI    string `json:"doi,omitempty"`
	PubMed string `json:"pubmed,omitempty"`
	WoS    string `json:"wos,omitempty"`
	Scopus string `json:"scopus,omitempty"`
	Title  string `json:"title,omitempty"`
}

// SuggestMapping picks, for each concept, the first column whose name hints
// at it. A column is assigned to at most one concept.
func SuggestMapping(columns []string) Mapping {
	fold := cases.Fold()
	var m Mapping
	containsAny := func(s string, terms ...string) bool {
		for _, t := range terms {
			if strings.Contains(s, t) {
				return true
			}
		}
		return false
	}

	for _, col := range columns {
		name := fold.String(col)
		switch {
		case m.DOI == "" && strings.Contains(name, "doi"):
			m.DOI = col
		case m.PubMed == "" && containsAny(name, "pubmed", "pmid"):
			m.PubMed = col
		case m.WoS == "" && containsAny(name, "wos", "ut (unique", "web of science"):
			m.WoS = col
		case m.Scopus == "" && strings.Contains(name, "scopus"):
			m.Scopus = col
		case m.Title == "" && containsAny(name, "title", "titre"):
			m.Title = col
		}
	}
	return m
}
