package google

import (
	"strings"

	"expenses/internal/core"
)

// parseTable converts a values matrix (as returned by Sheets API) into a
// Table. The first row is the header; fully blank rows are skipped.
func parseTable(values [][]interface{}) core.Table {
	if len(values) == 0 {
		return core.Table{Header: core.DefaultHeader(), Empty: true}
	}
	header := toStrings(values[0])
	for len(header) < len(core.Columns) {
		header = append(header, core.Columns[len(header)])
	}
	rows := make([]core.Row, 0, len(values)-1)
	for _, raw := range values[1:] {
		cells := toStrings(raw)
		if isBlank(cells) {
			continue
		}
		rows = append(rows, core.RowFromValues(cells))
	}
	return core.Table{Header: header, Rows: rows}
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
