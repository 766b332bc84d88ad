package main

import (
	"strings"
	"unicode/utf8"
)

const tableCellMaxWidth = 50
const tableCellEllipsis = "..."

func formatTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = utf8.RuneCountInString(header)
	}

	normalized := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = truncateTableCell(cell)
			if i < len(widths) {
				if w := utf8.RuneCountInString(cells[i]); w > widths[i] {
					widths[i] = w
				}
			}
		}
		normalized = append(normalized, cells)
	}

	var builder strings.Builder
	writeRow := func(row []string) {
		for i, cell := range row {
			builder.WriteString(cell)
			if i == len(row)-1 {
				builder.WriteByte('\n')
				continue
			}
			builder.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)+2))
		}
	}

	writeRow(headers)
	for _, row := range normalized {
		writeRow(row)
	}
	return builder.String()
}

func truncateTableCell(value string) string {
	value = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(value)
	if utf8.RuneCountInString(value) <= tableCellMaxWidth {
		return value
	}
	max := tableCellMaxWidth - utf8.RuneCountInString(tableCellEllipsis)
	return string([]rune(value)[:max]) + tableCellEllipsis
}
