package sheets

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Table names in the backing spreadsheet.
const (
	Students   = "students"
	Counseling = "counseling"
	Weekly     = "weekly"
)

// Column names. The header row of each worksheet must start with these, in
// the order the schema lists them.
const (
	ColName          = "이름"
	ColClass         = "반"
	ColOriginSchool  = "출신학교"
	ColTargetSchool  = "목표학교"
	ColAddress       = "주소"
	ColDate          = "날짜"
	ColNote          = "내용"
	ColPeriod        = "시기"
	ColHomework      = "과제"
	ColWeeklyScore   = "주간점수"
	ColWeeklyAverage = "주간평균"
	ColWeeklyWrong   = "주간오답"
	ColWeeklyNote    = "주간특이사항"
	ColAchScore      = "성취도점수"
	ColAchAverage    = "성취도평균"
	ColAchWrong      = "성취도오답"
	ColAchNote       = "성취도특이사항"
	ColAssignment    = "과제명"
	ColAnalysis      = "AI분석"
)

// Schema is the column contract of one worksheet.
type Schema struct {
	Name    string
	Columns []string
	Numeric map[string]bool
}

var schemas = map[string]Schema{
	Students: {
		Name:    Students,
		Columns: []string{ColName, ColClass, ColOriginSchool, ColTargetSchool, ColAddress},
	},
	Counseling: {
		Name:    Counseling,
		Columns: []string{ColName, ColDate, ColNote},
	},
	Weekly: {
		Name: Weekly,
		Columns: []string{
			ColName, ColPeriod, ColHomework,
			ColWeeklyScore, ColWeeklyAverage, ColWeeklyWrong, ColWeeklyNote,
			ColAchScore, ColAchAverage, ColAchWrong, ColAchNote,
			ColAssignment, ColAnalysis,
		},
		Numeric: map[string]bool{
			ColHomework:      true,
			ColWeeklyScore:   true,
			ColWeeklyAverage: true,
			ColAchScore:      true,
			ColAchAverage:    true,
		},
	},
}

// TableNames lists every table in the schema, in a stable order.
func TableNames() []string {
	return []string{Students, Counseling, Weekly}
}

// Lookup returns the schema for a table.
func Lookup(table string) (Schema, error) {
	s, ok := schemas[table]
	if !ok {
		return Schema{}, errors.Wrapf(ErrUnknownTable, "%q", table)
	}
	return s, nil
}

// IsNumeric reports whether values in col are coerced to numbers on read.
func (s Schema) IsNumeric(col string) bool {
	return s.Numeric[col]
}

// Row maps a named-field record onto the schema's column order. Fields the
// record omits are written empty; fields the schema does not know are rejected.
func (s Schema) Row(rec Record) ([]string, error) {
	index := make(map[string]int, len(s.Columns))
	for i, c := range s.Columns {
		index[c] = i
	}
	var unknown []string
	for k := range rec {
		if _, ok := index[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, errors.Wrapf(ErrSchemaMismatch, "table %s has no column(s) %s", s.Name, strings.Join(unknown, ", "))
	}

	row := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		row[i] = rec[c]
	}
	return row, nil
}

// CheckHeader verifies that a live header row starts with the schema's columns.
// Extra trailing columns in the sheet are allowed and left blank on append.
func (s Schema) CheckHeader(header []string) error {
	if len(header) < len(s.Columns) {
		return errors.Wrapf(ErrSchemaMismatch, "table %s header has %d columns, want %d", s.Name, len(header), len(s.Columns))
	}
	for i, c := range s.Columns {
		if got := strings.TrimSpace(header[i]); got != c {
			return errors.Wrapf(ErrSchemaMismatch, "table %s column %d is %q, want %q", s.Name, i+1, got, c)
		}
	}
	return nil
}

// Record is one row addressed by column name.
type Record map[string]string
