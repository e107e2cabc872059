// Package ui formats tabular and date output for the terminal.
package ui

import (
	"strings"
	"unicode/utf8"
)

const (
	cellMaxWidth = 40
	cellEllipsis = "..."
	columnGap    = 2
)

// Table collects rows and renders them as aligned columns.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable returns a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row. Cells beyond the header count are dropped.
func (table *Table) AddRow(cells ...string) {
	row := make([]string, len(table.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = TruncateCell(cells[i])
		}
	}
	table.rows = append(table.rows, row)
}

// Len returns the number of rows.
func (table *Table) Len() int {
	return len(table.rows)
}

// String renders the table. Trailing spaces are trimmed from every line.
func (table *Table) String() string {
	widths := make([]int, len(table.headers))
	for i, header := range table.headers {
		widths[i] = displayWidth(header)
	}
	for _, row := range table.rows {
		for i, cell := range row {
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var builder strings.Builder
	writeRow := func(row []string) {
		var line strings.Builder
		for i, cell := range row {
			line.WriteString(cell)
			if i < len(row)-1 {
				line.WriteString(strings.Repeat(" ", widths[i]-displayWidth(cell)+columnGap))
			}
		}
		builder.WriteString(strings.TrimRight(line.String(), " "))
		builder.WriteByte('\n')
	}

	writeRow(table.headers)
	for _, row := range table.rows {
		writeRow(row)
	}
	return builder.String()
}

// TruncateCell flattens line breaks and limits a cell to a fixed width.
func TruncateCell(value string) string {
	value = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(value)
	if displayWidth(value) <= cellMaxWidth {
		return value
	}
	runes := []rune(value)
	return string(runes[:cellMaxWidth-utf8.RuneCountInString(cellEllipsis)]) + cellEllipsis
}

func displayWidth(value string) int {
	return utf8.RuneCountInString(value)
}
