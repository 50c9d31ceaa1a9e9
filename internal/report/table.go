package report

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
)

// Alignment of a rendered column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// RenderTable draws headers and rows as a rounded box table.
// Short rows are padded with empty cells.
func RenderTable(headers []string, rows [][]string, aligns []Alignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			WidthMax:    60,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// CollectionRows flattens the given columns of c to strings.
// A limit <= 0 keeps every row.
func CollectionRows(c *collection.Collection, columns []string, limit int) [][]string {
	n := c.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(columns))
		for j, col := range columns {
			row[j] = reconcile.Cell(c.Rows[i][col])
		}
		rows[i] = row
	}
	return rows
}

// CollectionTable renders c restricted to columns (all columns when nil).
func CollectionTable(c *collection.Collection, columns []string, limit int) string {
	if columns == nil {
		columns = c.Columns
	}
	return RenderTable(columns, CollectionRows(c, columns, limit), nil)
}
