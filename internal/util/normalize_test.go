package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortNumberList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "space separated", input: "13 2 7", want: "2, 7, 13"},
		{name: "comma separated", input: "5,3,11", want: "3, 5, 11"},
		{name: "mixed text", input: "3번, 1번 그리고 20번", want: "1, 3, 20"},
		{name: "already sorted", input: "2, 7, 13", want: "2, 7, 13"},
		{name: "duplicates kept", input: "4 4 1", want: "1, 4, 4"},
		{name: "leading zeros", input: "07 10", want: "7, 10"},
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "   ", want: ""},
		{name: "no digits", input: "abc", want: "abc"},
		{name: "overflowing integer last", input: "99999999999999999999999 1", want: "1, 99999999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortNumberList(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, SortNumberList(got), "SortNumberList must be idempotent")
		})
	}
}

func TestCanonicalSchool(t *testing.T) {
	tests := []struct {
		name  string
		input string
		level SchoolLevel
		want  string
	}{
		{name: "bare middle", input: "풍생", level: Middle, want: "풍생중"},
		{name: "full middle suffix", input: "풍생중학교", level: Middle, want: "풍생중"},
		{name: "short middle suffix", input: "풍생중", level: Middle, want: "풍생중"},
		{name: "bare high", input: "분당", level: High, want: "분당고"},
		{name: "full high suffix", input: "분당고등학교", level: High, want: "분당고"},
		{name: "abbreviated high", input: "분당고교", level: High, want: "분당고"},
		{name: "short high suffix", input: "분당고", level: High, want: "분당고"},
		{name: "level switch", input: "풍생고", level: Middle, want: "풍생중"},
		{name: "surrounding spaces", input: "  서현 중학교 ", level: Middle, want: "서현중"},
		{name: "doubled suffix", input: "풍생중중", level: Middle, want: "풍생중"},
		{name: "empty", input: "", level: High, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalSchool(tt.input, tt.level)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, CanonicalSchool(got, tt.level), "CanonicalSchool must be idempotent")
		})
	}
}

func TestCanonicalClass(t *testing.T) {
	for _, input := range []string{"a1", " b2 ", "C3", "", "\tm-1\n"} {
		got := CanonicalClass(input)
		assert.Equal(t, got, CanonicalClass(got), "CanonicalClass(%q) not idempotent", input)
	}
	assert.Equal(t, "A1", CanonicalClass(" a1 "))
	assert.Equal(t, "M-1", CanonicalClass("\tm-1\n"))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"85", 85},
		{"1,234", 1234},
		{" 72.5 ", 72.5},
		{"90%", 90},
		{"", 0},
		{"결석", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseNumber(tt.input), "ParseNumber(%q)", tt.input)
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "85", FormatNumber(85))
	assert.Equal(t, "72.5", FormatNumber(72.5))
	assert.Equal(t, "0", FormatNumber(0))
}
