package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// pdfScanPages is how many leading pages are searched for a DOI.
const pdfScanPages = 3

// pdfColumns are the columns of a collection read from a PDF directory.
var pdfColumns = []string{"File", "Title", "DOI"}

// ReadPDFDir builds a collection with one record per PDF file in dir
// (non-recursive, sorted by name). Files that cannot be parsed keep only
// their file name.
func ReadPDFDir(dir, name string) (*collection.Collection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	c := collection.New(name, pdfColumns)
	for _, file := range files {
		rec := collection.Record{"File": file, "Title": nil, "DOI": nil}
		title, doi, err := scanPDF(filepath.Join(dir, file))
		if err == nil {
			rec["Title"] = nilIfEmpty(title)
			rec["DOI"] = nilIfEmpty(doi)
		}
		c.Rows = append(c.Rows, rec)
	}
	return c, nil
}

// scanPDF returns the first substantial line of page 1 as the title and the
// first DOI found on the leading pages.
func scanPDF(path string) (title, doi string, err error) {
	defer func() {
		// The PDF parser panics on some malformed files.
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	pages := r.NumPage()
	if pages > pdfScanPages {
		pages = pdfScanPages
	}
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i == 1 {
			title = titleLine(text)
		}
		if doi == "" {
			doi = findDOI(text)
		}
		if doi != "" && title != "" {
			break
		}
	}
	return title, doi, nil
}

func titleLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) {
			return line
		}
	}
	return ""
}

// findDOI finds a DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}

// isHeaderLine checks if a line is likely a header/footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"), strings.Contains(lower, "copyright"):
		return true
	case strings.Contains(lower, "volume") && strings.Contains(lower, "issue"):
		return true
	case strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	}
	return false
}
