// Package anomaly flags records that probably do not belong to the
// researcher: their author list does not mention the researcher's name.
package anomaly

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
)

// DefaultAuthorColumn is the author list column of WoS exports.
const DefaultAuthorColumn = "Author Full Names"

// TopNames is how many frequent last names a report lists.
const TopNames = 3

// Suggested actions per record.
const (
	ActionRemove   = "Nous pensons que ces publications ne vous appartiennent pas. Nous vous suggérons de les supprimer des deux profils WoS."
	ActionNotORCID = "Pas dans orcID"
)

// ORCIDPathColumn holds the ORCID work path when a WoS record was matched to
// an ORCID export.
const ORCIDPathColumn = "orcid path"

// ProfileColumn names the WoS ResearcherID profile a record comes from.
const ProfileColumn = "profile"

var nameSeparator = regexp.MustCompile(`, |; `)

// NameCount is a last name and how often it appears among flagged records.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Report is the result of an author check.
type Report struct {
	Collection string      `json:"collection"`
	Researcher string      `json:"researcher"`
	Column     string      `json:"column"`
	Total      int         `json:"total"`
	Flagged    []int       `json:"flagged"` // row indices
	TopNames   []NameCount `json:"top_names"`
}

// ErrMissingAuthorColumn is returned when the author column does not exist.
var ErrMissingAuthorColumn = errors.New("author column not found")

// Check flags every record whose author list does not contain researcher
// (case-insensitive substring). For flagged records the author list is split
// on ", " and "; " and every other token, the last names, is counted.
func Check(c *collection.Collection, researcher, column string) (*Report, error) {
	if strings.TrimSpace(researcher) == "" {
		return nil, errors.New("researcher name is required")
	}
	if column == "" {
		column = DefaultAuthorColumn
	}
	if !c.HasColumn(column) {
		return nil, fmt.Errorf("%w: %s in %s", ErrMissingAuthorColumn, column, c.Name)
	}

	rep := &Report{Collection: c.Name, Researcher: researcher, Column: column, Total: c.Len()}
	needle := strings.ToLower(strings.TrimSpace(researcher))
	counts := make(map[string]int)

	for i, row := range c.Rows {
		authors := strings.ToLower(reconcile.Cell(row[column]))
		if strings.Contains(authors, needle) {
			continue
		}
		rep.Flagged = append(rep.Flagged, i)
		for j, token := range nameSeparator.Split(authors, -1) {
			if j%2 == 0 && token != "" {
				counts[token]++
			}
		}
	}

	rep.TopNames = topNames(counts, TopNames)
	return rep, nil
}

// IsFlagged reports whether row i was flagged.
func (r *Report) IsFlagged(i int) bool {
	idx := sort.SearchInts(r.Flagged, i)
	return idx < len(r.Flagged) && r.Flagged[idx] == i
}

// Message is the human summary of the report.
func (r *Report) Message() string {
	if len(r.Flagged) == 0 {
		return "Il n'y a pas d'anomalie"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Sur %d articles - il y a %d articles qui ne sont potentiellement pas au chercheur.\n", r.Total, len(r.Flagged))
	b.WriteString("Veuillez vérifier que ces articles vous appartiennent bien.\n")
	fmt.Fprintf(&b, "Voici les %d noms de familles qui reviennent le plus souvent.", len(r.TopNames))
	for _, n := range r.TopNames {
		fmt.Fprintf(&b, "\nNom : %s : %d fois", capitalize(n.Name), n.Count)
	}
	return b.String()
}

// SuggestAction returns the recommended action for row i of the checked
// collection: removal for flagged records, otherwise whether the record was
// found in ORCID.
func (r *Report) SuggestAction(c *collection.Collection, i int) string {
	if r.IsFlagged(i) {
		return ActionRemove
	}
	path := reconcile.Cell(c.Value(i, ORCIDPathColumn))
	if path == "" {
		return ActionNotORCID
	}
	return "Dans ORCID et situé dans votre WoS ResearcherID : " + reconcile.Cell(c.Value(i, ProfileColumn))
}

func topNames(counts map[string]int, n int) []NameCount {
	out := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
