package helpers

import (
	"strconv"
	"strings"
	"unicode"
)

// JoinName builds a display name from first, middle and last parts,
// skipping blanks and collapsing whitespace.
func JoinName(parts ...string) string {
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		fields = append(fields, strings.Fields(p)...)
	}
	return strings.Join(fields, " ")
}

// CompareNamesFold compares two display names case-insensitively.
// It returns -1, 0 or 1.
func CompareNamesFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// classNumber extracts the first run of digits in a class name.
func classNumber(name string) (int, bool) {
	start := strings.IndexFunc(name, unicode.IsDigit)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(name[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// LessClassName orders class names numerically when both carry a number
// ("Class 2" < "Class 10"). Names with a number sort before names without
// one; everything else falls back to a case-insensitive compare.
func LessClassName(a, b string) bool {
	na, okA := classNumber(a)
	nb, okB := classNumber(b)
	switch {
	case okA && okB && na != nb:
		return na < nb
	case okA != okB:
		return okA
	}
	return CompareNamesFold(a, b) < 0
}
