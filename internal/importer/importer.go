// Package importer reads publication exports (CSV, XLSX, JSON, JSONL,
// BibTeX, Paperpile JSON, a directory of PDFs) into collections.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
)

// Format is an input file format.
type Format string

const (
	FormatCSV       Format = "csv"
	FormatXLSX      Format = "xlsx"
	FormatJSON      Format = "json"
	FormatJSONL     Format = "jsonl"
	FormatBibTeX    Format = "bib"
	FormatPaperpile Format = "paperpile"
	FormatPDFDir    Format = "pdf"
)

// ValidFormats lists the accepted values of Options.Format.
var ValidFormats = []Format{FormatCSV, FormatXLSX, FormatJSON, FormatJSONL, FormatBibTeX, FormatPaperpile, FormatPDFDir}

// ErrUnknownFormat is returned when a format cannot be detected or parsed.
var ErrUnknownFormat = errors.New("unknown input format")

// Options controls Load.
type Options struct {
	Format Format // detected from the path when empty
	Sheet  string // XLSX sheet, first sheet when empty

	// Raw disables the source-specific cleanups (ORCID pivot, Scopus dates).
	Raw bool
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range ValidFormats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %s (valid: %v)", ErrUnknownFormat, s, ValidFormats)
}

// DetectFormat guesses the format from the file extension, or FormatPDFDir
// for a directory.
func DetectFormat(path string) (Format, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return FormatPDFDir, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".bib", ".bibtex":
		return FormatBibTeX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Load reads the file or directory at path into a collection named name,
// then applies the source-specific cleanups unless opts.Raw is set.
func Load(path, name string, opts Options) (*collection.Collection, error) {
	format := opts.Format
	if format == "" {
		f, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = f
	}

	c, err := load(path, name, format, opts)
	if err != nil {
		return nil, fmt.Errorf("reading %s as %s: %w", path, format, err)
	}
	if !opts.Raw {
		c = Clean(c)
	}
	return c, nil
}

func load(path, name string, format Format, opts Options) (*collection.Collection, error) {
	if format == FormatPDFDir {
		return ReadPDFDir(path, name)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case FormatCSV:
		return ReadCSV(f, name)
	case FormatXLSX:
		return ReadXLSX(f, name, opts.Sheet)
	case FormatJSON:
		return ReadJSON(f, name)
	case FormatJSONL:
		return ReadJSONL(f, name)
	case FormatBibTeX:
		return ReadBibTeX(f, name)
	case FormatPaperpile:
		return ReadPaperpile(f, name)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Clean applies the cleanups every source needs before reconciliation:
// ORCID type/value rows are pivoted into identifier columns and Scopus cover
// dates are reduced to their year.
func Clean(c *collection.Collection) *collection.Collection {
	if IsORCIDLong(c) {
		c = PivotORCID(c)
	}
	if c.HasColumn("scopus_id") && c.HasColumn("Date") {
		CleanScopusDates(c)
	}
	return c
}
