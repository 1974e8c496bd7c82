package cdecl

import "strings"

// Line is a candidate declaration with its 1-based position in the header
type Line struct {
	Number int
	Text   string
}

// Prefilter drops blank lines and full-line comments and strips trailing line comments
func Prefilter(text string) []Line {
	var lines []Line
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if idx := strings.Index(line, "//"); idx != -1 {
			line = strings.TrimSpace(line[:idx])
		}
		lines = append(lines, Line{Number: i + 1, Text: line})
	}
	return lines
}
