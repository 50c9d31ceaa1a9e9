package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
)

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// PaperpileEntry represents a single entry from a Paperpile JSON export.
type PaperpileEntry struct {
	ID        string         `json:"_id"`
	Citekey   string         `json:"citekey"`
	DOI       string         `json:"doi"`
	PMID      FlexibleString `json:"pmid"`
	Title     string         `json:"title"`
	Journal   string         `json:"journal"`
	Published struct {
		Year FlexibleString `json:"year"`
	} `json:"published"`
	Author []struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"author"`
}

// Columns of a collection read from a Paperpile export.
var paperpileColumns = []string{"Citekey", "Title", "Author Full Names", "Journal", "Year", "DOI", "Pubmed Id"}

// ReadPaperpile reads a Paperpile JSON export. Entries without a title are
// skipped.
func ReadPaperpile(r io.Reader, name string) (*collection.Collection, error) {
	var entries []PaperpileEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("parsing Paperpile JSON: %w", err)
	}

	c := collection.New(name, paperpileColumns)
	for _, e := range entries {
		if strings.TrimSpace(e.Title) == "" {
			continue
		}
		c.Rows = append(c.Rows, paperpileRecord(e))
	}
	return c, nil
}

func paperpileRecord(e PaperpileEntry) collection.Record {
	authors := make([]string, 0, len(e.Author))
	for _, a := range e.Author {
		if a.First != "" {
			authors = append(authors, a.Last+", "+a.First)
		} else {
			authors = append(authors, a.Last)
		}
	}

	id := e.Citekey
	if id == "" {
		id = e.ID
	}

	rec := collection.Record{
		"Citekey":           id,
		"Title":             e.Title,
		"Author Full Names": nilIfEmpty(strings.Join(authors, "; ")),
		"Journal":           nilIfEmpty(e.Journal),
		"Year":              nil,
		"DOI":               nilIfEmpty(e.DOI),
		"Pubmed Id":         nilIfEmpty(e.PMID.String()),
	}
	if y, err := strconv.Atoi(e.Published.Year.String()); err == nil {
		rec["Year"] = strconv.Itoa(y)
	}
	return rec
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
