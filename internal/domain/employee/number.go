package employee

import "strings"

// CompareNumbers orders employee numbers: all-digit numbers first, by numeric
// value, then every other number lexically. It returns -1, 0 or 1 and is a
// total order, so mixed directories sort stably.
func CompareNumbers(a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	numA, numB := isDigits(a), isDigits(b)
	switch {
	case numA && numB:
		return compareDigits(a, b)
	case numA:
		return -1
	case numB:
		return 1
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// compareDigits compares unbounded decimal strings by value.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
