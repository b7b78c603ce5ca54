package util

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// SchoolLevel selects the canonical one-character school suffix.
type SchoolLevel int

const (
	Middle SchoolLevel = iota
	High
)

// Suffix returns the canonical suffix for the level.
func (l SchoolLevel) Suffix() string {
	if l == High {
		return "고"
	}
	return "중"
}

var (
	integerPattern = regexp.MustCompile(`\d+`)

	// Longest variants first so "중학교" is stripped whole rather than leaving "중학".
	schoolSuffixes = []string{"고등학교", "중학교", "고교", "고", "중"}
)

// SortNumberList extracts every integer in s, sorts them ascending and joins
// them with ", ". Input without digits is returned unchanged.
func SortNumberList(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	matches := integerPattern.FindAllString(s, -1)
	if len(matches) == 0 {
		return s
	}

	type number struct {
		text  string
		value uint64
	}
	nums := make([]number, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			// longer than uint64; keep it and order it last
			v = ^uint64(0)
		}
		nums = append(nums, number{text: trimLeadingZeros(m), value: v})
	}
	sort.SliceStable(nums, func(i, j int) bool { return nums[i].value < nums[j].value })

	out := make([]string, len(nums))
	for i, n := range nums {
		out[i] = n.text
	}
	return strings.Join(out, ", ")
}

func trimLeadingZeros(s string) string {
	t := strings.TrimLeft(s, "0")
	if t == "" {
		return "0"
	}
	return t
}

// CanonicalSchool strips any known school suffix from name and appends the
// single canonical suffix for level. "풍생중학교", "풍생중" and "풍생" all become "풍생중".
func CanonicalSchool(name string, level SchoolLevel) string {
	base := strings.TrimSpace(name)
	if base == "" {
		return ""
	}
	for stripped := true; stripped; {
		stripped = false
		for _, suffix := range schoolSuffixes {
			if strings.HasSuffix(base, suffix) {
				base = strings.TrimSpace(strings.TrimSuffix(base, suffix))
				stripped = true
				break
			}
		}
	}
	return base + level.Suffix()
}

// CanonicalClass trims and uppercases a class code.
func CanonicalClass(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ParseNumber reads a spreadsheet cell as a number. Thousands separators are
// stripped and anything unparsable is zero.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// FormatNumber renders a number the way the sheet shows it: integers without
// a decimal point, everything else in shortest form.
func FormatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
