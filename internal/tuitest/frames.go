package tuitest

import (
	"regexp"
	"strings"
)

var (
	csiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscPattern = regexp.MustCompile(`\x1b\][^\x07]*(\x07|\x1b\\)`)
)

// Plain returns the whole stream with escape sequences removed. Bubbletea
// repaints changed lines in place, so the stream is searched as a whole
// rather than split into screens.
func (r *Recording) Plain() string {
	if r == nil {
		return ""
	}
	return normalizeLines(stripANSI(strings.ReplaceAll(string(r.Raw), "\r", "")))
}

// Contains reports whether text appears anywhere in the plain stream.
func (r *Recording) Contains(text string) bool {
	return strings.Contains(r.Plain(), text)
}

func stripANSI(s string) string {
	s = oscPattern.ReplaceAllString(s, "")
	s = csiPattern.ReplaceAllString(s, "")
	// Charset shifts.
	s = strings.ReplaceAll(s, "\x0f", "")
	s = strings.ReplaceAll(s, "\x0e", "")
	return s
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
