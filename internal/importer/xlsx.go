package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
)

// ReadXLSX reads one sheet of a workbook; the first row is the header.
// An empty sheet name selects the first sheet.
func ReadXLSX(r io.Reader, name, sheet string) (*collection.Collection, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return collection.New(name, nil), nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return collection.New(name, nil), nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	return collection.FromTable(name, header, rows[1:]), nil
}
