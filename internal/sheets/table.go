package sheets

import (
	"strings"

	"studentdesk/internal/util"
)

// Table is a fully read worksheet. Tables returned by Store are shared through
// the cache and must be treated as read-only.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Row is one data row. Numeric columns carry both the raw cell text and the
// coerced number.
type Row struct {
	cells   map[string]string
	numbers map[string]float64
}

// String returns the trimmed cell text of col, or "" when absent.
func (r Row) String(col string) string {
	return r.cells[col]
}

// Number returns the coerced value of a numeric column. Non-numeric columns
// are parsed on demand with the same rules.
func (r Row) Number(col string) float64 {
	if n, ok := r.numbers[col]; ok {
		return n
	}
	return util.ParseNumber(r.cells[col])
}

// Values returns the row's cells in the given column order.
func (r Row) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = r.cells[c]
	}
	return out
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Where returns the rows whose col equals value, in sheet order.
func (t *Table) Where(col, value string) []Row {
	if t == nil {
		return nil
	}
	var out []Row
	for _, r := range t.Rows {
		if r.cells[col] == value {
			out = append(out, r)
		}
	}
	return out
}

// Last returns the final data row.
func (t *Table) Last() (Row, bool) {
	if t.Empty() {
		return Row{}, false
	}
	return t.Rows[len(t.Rows)-1], true
}

// emptyTable is what readers see for a missing or blank worksheet.
func emptyTable(s Schema) *Table {
	return &Table{Name: s.Name, Columns: append([]string(nil), s.Columns...)}
}

// buildTable turns raw sheet values (header first) into a Table. Short rows
// are padded, cells beyond the header are dropped and fully blank rows are skipped.
func buildTable(s Schema, values [][]string) *Table {
	if len(values) == 0 || isBlank(values[0]) {
		return emptyTable(s)
	}

	header := make([]string, 0, len(values[0]))
	for _, h := range values[0] {
		header = append(header, strings.TrimSpace(h))
	}
	t := &Table{Name: s.Name, Columns: header}

	for _, raw := range values[1:] {
		if isBlank(raw) {
			continue
		}
		row := Row{cells: make(map[string]string, len(header))}
		for i, col := range header {
			if col == "" {
				continue
			}
			var cell string
			if i < len(raw) {
				cell = strings.TrimSpace(raw[i])
			}
			row.cells[col] = cell
			if s.IsNumeric(col) {
				if row.numbers == nil {
					row.numbers = make(map[string]float64, len(s.Numeric))
				}
				row.numbers[col] = util.ParseNumber(cell)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
