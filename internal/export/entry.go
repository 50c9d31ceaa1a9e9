package export

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/extract"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/identifier"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
)

// Entry is the bibliographic subset of a record that can be exported.
type Entry struct {
	Key     string
	Title   string
	Authors []Author
	Journal string
	Year    string
	DOI     string
}

// Author is one name of an author list.
type Author struct {
	First string
	Last  string
}

// Fields names the columns an Entry is read from. Empty means "not available".
type Fields struct {
	Title   string
	Authors string
	Journal string
	Year    string
	DOI     string
}

var yearRegex = regexp.MustCompile(`\b(1[89]\d{2}|2\d{3})\b`)

// DetectFields guesses the bibliographic columns of a collection.
func DetectFields(c *collection.Collection) Fields {
	m := extract.SuggestMapping(c.Columns)
	f := Fields{Title: m.Title, DOI: m.DOI}

	fold := cases.Fold()
	for _, col := range c.Columns {
		name := fold.String(col)
		switch {
		case f.Authors == "" && (strings.Contains(name, "author") || strings.Contains(name, "auteur") || strings.HasPrefix(name, "auth")):
			f.Authors = col
		case f.Journal == "" && (strings.Contains(name, "journal") || strings.Contains(name, "source title") ||
			strings.Contains(name, "nom publication")):
			f.Journal = col
		case f.Year == "" && (strings.Contains(name, "year") || name == "date" || strings.Contains(name, "publicationdate")):
			f.Year = col
		}
	}
	// WoS exports carry "Article Title" next to "Source Title"; prefer the article.
	if f.Title == "" {
		for _, col := range c.Columns {
			name := fold.String(col)
			if strings.Contains(name, "title") && col != f.Journal {
				f.Title = col
				break
			}
		}
	}
	return f
}

// Entries extracts one Entry per record of c using the detected fields.
// Keys are unique within the returned slice.
func Entries(c *collection.Collection) []Entry {
	f := DetectFields(c)
	used := make(map[string]int)
	entries := make([]Entry, 0, c.Len())
	for _, row := range c.Rows {
		e := Entry{
			Title:   cell(row, f.Title),
			Authors: ParseAuthors(cell(row, f.Authors)),
			Journal: cell(row, f.Journal),
			DOI:     identifier.NormalizeDOI(cell(row, f.DOI)),
		}
		if y := yearRegex.FindString(cell(row, f.Year)); y != "" {
			e.Year = y
		}
		e.Key = uniqueKey(baseKey(e, c.Name), used)
		entries = append(entries, e)
	}
	return entries
}

func cell(row collection.Record, col string) string {
	if col == "" {
		return ""
	}
	return strings.TrimSpace(reconcile.Cell(row[col]))
}

// ParseAuthors splits an author list written as "Last, First; Last, First"
// (WoS, HAL) or "First Last, First Last" (ORCID, Scopus).
func ParseAuthors(s string) []Author {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var authors []Author
	if strings.Contains(s, ";") || singleLastFirst(s) {
		for _, part := range strings.Split(s, ";") {
			if a, ok := parseName(part, true); ok {
				authors = append(authors, a)
			}
		}
		return authors
	}
	for _, part := range strings.Split(s, ",") {
		if a, ok := parseName(part, false); ok {
			authors = append(authors, a)
		}
	}
	return authors
}

// singleLastFirst reports whether s is one "Last, First" name.
func singleLastFirst(s string) bool {
	last, _, ok := strings.Cut(s, ",")
	return ok && strings.Count(s, ",") == 1 && !strings.Contains(strings.TrimSpace(last), " ")
}

func parseName(s string, lastFirst bool) (Author, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Author{}, false
	}
	if lastFirst {
		if last, first, ok := strings.Cut(s, ","); ok {
			return Author{Last: strings.TrimSpace(last), First: strings.TrimSpace(first)}, true
		}
		return Author{Last: s}, true
	}
	if i := strings.LastIndex(s, " "); i > 0 {
		return Author{First: s[:i], Last: s[i+1:]}, true
	}
	return Author{Last: s}, true
}

func baseKey(e Entry, fallback string) string {
	var b strings.Builder
	if len(e.Authors) > 0 {
		for _, r := range e.Authors[0].Last {
			if unicode.IsLetter(r) {
				b.WriteRune(r)
			}
		}
	}
	if b.Len() == 0 {
		for _, r := range fallback {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
	}
	if b.Len() == 0 {
		b.WriteString("ref")
	}
	b.WriteString(e.Year)
	return b.String()
}

func uniqueKey(base string, used map[string]int) string {
	used[base]++
	if n := used[base]; n > 1 {
		return fmt.Sprintf("%s-%d", base, n)
	}
	return base
}
