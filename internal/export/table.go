package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/report"
)

// Sheet is one named table of an export.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// RecapSheetName names the coverage recap sheet of a workbook.
const RecapSheetName = "Récapitulatif"

// AugmentedSheet is the sheet of one pairwise comparison, keyed like the pair.
func AugmentedSheet(a *reconcile.Augmented) Sheet {
	header, rows := a.Table()
	return Sheet{Name: reconcile.PairKey(a.Source.Name, a.Target), Header: header, Rows: rows}
}

// CollectionSheet flattens every column of c.
func CollectionSheet(name string, c *collection.Collection) Sheet {
	return Sheet{Name: name, Header: c.Columns, Rows: report.CollectionRows(c, c.Columns, 0)}
}

// RecapSheet is the coverage recap of a batch.
func RecapSheet(entries []reconcile.RecapEntry) Sheet {
	return Sheet{Name: RecapSheetName, Header: report.RecapHeaders, Rows: report.RecapRows(entries)}
}

// WriteCSV writes a header and rows as UTF-8 CSV.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing csv rows: %w", err)
	}
	return nil
}

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

// SheetName makes a valid, unique Excel sheet name from name.
func SheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	if clean == "" {
		clean = "Sheet"
	}
	if r := []rune(clean); len(r) > maxSheetName {
		clean = string(r[:maxSheetName])
	}

	candidate := clean
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf("~%d", n)
		r := []rune(clean)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		candidate = string(r) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// WriteXLSX writes sheets into one workbook, in order.
func WriteXLSX(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheet to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool)
	for i, s := range sheets {
		name := SheetName(s.Name, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("naming sheet %s: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}

		if err := writeRow(f, name, 1, s.Header); err != nil {
			return err
		}
		for j, row := range s.Rows {
			if err := writeRow(f, name, j+2, row); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, cells []string) error {
	axis, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(sheet, axis, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}
