package scanner

import (
	"regexp"
	"strings"
)

// Comment mining shared by both extraction passes: walk upward from the line
// above a declaration, through at most maxBack lines, collecting contiguous
// comment lines. Blank lines are skipped; the first real code line stops the
// scan.

var (
	descMarkerRe    = regexp.MustCompile(`(?i)^@?description\s*[:\-]?\s*(.*)$`)
	purposeMarkerRe = regexp.MustCompile(`(?i)^@?purpose\s*[:\-]?\s*(.*)$`)
)

// collectComments returns the stripped comment lines preceding declLine
// (1-based), in source order.
func collectComments(lines []string, declLine, maxBack int) []string {
	var collected []string
	idx := declLine - 2 // 0-based index of the line above the declaration
	for back := 0; back < maxBack && idx >= 0; back, idx = back+1, idx-1 {
		trimmed := strings.TrimSpace(lines[idx])
		if trimmed == "" {
			continue
		}
		if !isCommentLine(trimmed) {
			break
		}
		collected = append(collected, stripCommentMarkers(trimmed))
	}
	// Collected bottom-up; restore source order.
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return collected
}

// mineDescription concatenates the preceding comment block into one string.
func mineDescription(lines []string, declLine, maxBack int) string {
	var parts []string
	for _, c := range collectComments(lines, declLine, maxBack) {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

// mineFunctionDocs separates explicitly marked description/purpose lines from
// the unlabeled remainder, which accumulates into the description.
func mineFunctionDocs(lines []string, declLine, maxBack int) (description, purpose string) {
	var descParts []string
	for _, c := range collectComments(lines, declLine, maxBack) {
		if c == "" {
			continue
		}
		if m := purposeMarkerRe.FindStringSubmatch(c); m != nil {
			purpose = strings.TrimSpace(m[1])
			continue
		}
		if m := descMarkerRe.FindStringSubmatch(c); m != nil {
			if t := strings.TrimSpace(m[1]); t != "" {
				descParts = append(descParts, t)
			}
			continue
		}
		descParts = append(descParts, c)
	}
	return strings.Join(descParts, " "), purpose
}

func isCommentLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "/*") ||
		strings.HasPrefix(trimmed, "*")
}

func stripCommentMarkers(trimmed string) string {
	s := trimmed
	s = strings.TrimPrefix(s, "/**")
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimPrefix(s, "//")
	s = strings.TrimPrefix(s, "*/")
	s = strings.TrimPrefix(s, "*")
	s = strings.TrimSuffix(s, "*/")
	return strings.TrimSpace(s)
}

// lineFromOffset calculates the 1-based line number of a byte offset.
func lineFromOffset(content string, offset int) int {
	if offset > len(content) {
		offset = len(content)
	}
	return strings.Count(content[:offset], "\n") + 1
}
