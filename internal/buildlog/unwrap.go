package buildlog

import (
	"strings"
	"unicode/utf8"
)

// MaxPrintLine is the default width at which TeX wraps log lines.
const MaxPrintLine = 79

// Unwrap joins lines that the engine split at MaxPrintLine characters.
func Unwrap(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	var b strings.Builder
	b.Grow(len(text))
	for i, line := range lines {
		b.WriteString(line)
		if i == len(lines)-1 {
			break
		}
		if utf8.RuneCountInString(line) == MaxPrintLine && !isStandaloneLine(lines[i+1]) {
			continue
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// isStandaloneLine detects lines that never continue a wrapped one.
func isStandaloneLine(next string) bool {
	return strings.HasPrefix(next, "! ") ||
		strings.HasPrefix(next, "LaTeX Warning:") ||
		strings.HasPrefix(next, "Package ") ||
		strings.HasPrefix(next, "Class ") ||
		strings.HasPrefix(next, "Overfull ") ||
		strings.HasPrefix(next, "Underfull ")
}
