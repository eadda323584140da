package util

import "strings"

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// Truncate keeps the first max characters of s.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max < 0 || len(r) <= max {
		return s
	}
	return string(r[:max])
}

// Ellipsize truncates s to max characters and appends "..." when it had to cut.
func Ellipsize(s string, max int) string {
	if t := Truncate(s, max); t != s {
		return t + "..."
	}
	return s
}
