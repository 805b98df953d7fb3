package textutil

import "unicode/utf8"

// Truncate shortens s to at most max characters and appends marker when it
// cut anything. The cut happens on a rune boundary, so the kept prefix is
// exactly max runes long.
func Truncate(s string, max int, marker string) string {
	if max < 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + marker
		}
		n++
	}
	return s
}
