package buildlog

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	reFileLineError = regexp.MustCompile(`(?m)^(.+\.[A-Za-z]+):(\d+): (.+)$`)
	reLineHint      = regexp.MustCompile(`(?m)^l\.(\d+)`)
	reWarning       = regexp.MustCompile(`(?m)^(LaTeX|Package [^\s]+|Class [^\s]+) Warning: `)
	reInputLine     = regexp.MustCompile(`on input line (\d+)`)
	reContinuation  = regexp.MustCompile(`\n\([^)\s]+\)`)
	reBadBox        = regexp.MustCompile(`(?m)^((?:Over|Under)full \\[hv]box .*?)(?: (?:in paragraph |in alignment )?at lines? (\d+)(?:--\d+)?)?$`)
)

// Parse extracts entries from the raw text of a log file, in log order.
func Parse(raw string) []Entry {
	text := Unwrap(raw)
	files := scanFiles(text)

	type located struct {
		at    int
		entry Entry
	}
	var found []located
	add := func(at int, e Entry) {
		if e.File == "" {
			e.File = fileAt(files, at)
		}
		found = append(found, located{at: at, entry: e})
	}

	// -file-line-error style; these carry their own file name
	for _, m := range reFileLineError.FindAllStringSubmatchIndex(text, -1) {
		file := text[m[2]:m[3]]
		if !looksLikeFile(file) {
			continue
		}
		line, _ := strconv.Atoi(text[m[4]:m[5]])
		add(m[0], Entry{
			Level:   LevelError,
			Message: strings.TrimSpace(text[m[6]:m[7]]),
			File:    file,
			Line:    line,
		})
	}

	lines := splitLines(text)
	for i, ln := range lines {
		if !strings.HasPrefix(ln.text, "! ") {
			continue
		}
		msg := strings.TrimSpace(strings.TrimPrefix(ln.text, "! "))
		e := Entry{Level: LevelError, Message: msg}
		// l.<n> следует в нескольких строках после сообщения
		for j := i + 1; j < len(lines) && j <= i+12; j++ {
			if strings.HasPrefix(lines[j].text, "! ") {
				break
			}
			if m := reLineHint.FindStringSubmatch(lines[j].text); m != nil {
				e.Line, _ = strconv.Atoi(m[1])
				break
			}
		}
		add(ln.start, e)
	}

	for _, m := range reWarning.FindAllStringSubmatchIndex(text, -1) {
		start := m[1]
		end := warningEnd(text, start)
		body := reContinuation.ReplaceAllString(text[start:end], " ")
		e := Entry{Level: LevelWarning, Message: collapse(body)}
		if lm := reInputLine.FindStringSubmatchIndex(body); lm != nil {
			e.Line, _ = strconv.Atoi(body[lm[2]:lm[3]])
			e.Message = strings.TrimRight(collapse(body[:lm[0]]), " .")
		}
		add(m[0], e)
	}

	for _, m := range reBadBox.FindAllStringSubmatchIndex(text, -1) {
		e := Entry{Level: LevelWarning, Message: strings.TrimSpace(text[m[2]:m[3]])}
		if m[4] >= 0 {
			e.Line, _ = strconv.Atoi(text[m[4]:m[5]])
		}
		add(m[0], e)
	}

	// порядок лога
	slices.SortStableFunc(found, func(a, b located) int {
		return cmp.Compare(a.at, b.at)
	})
	out := make([]Entry, 0, len(found))
	for _, f := range found {
		out = append(out, f.entry)
	}
	return out
}

type logLine struct {
	start int
	text  string
}

func splitLines(text string) []logLine {
	var out []logLine
	start := 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == '\n' {
			out = append(out, logLine{start: start, text: text[start:i]})
			start = i + 1
		}
	}
	return out
}

// warningEnd returns the end of the line that starts at start, extended
// over "(pkg)   more text" continuation lines.
func warningEnd(text string, start int) int {
	i := start
	for {
		nl := strings.IndexByte(text[i:], '\n')
		if nl < 0 {
			return len(text)
		}
		next := i + nl + 1
		if !isContinuation(text[next:]) {
			return i + nl
		}
		i = next
	}
}

// isContinuation matches the "(hyperref)   ..." prefix packages use to
// continue a warning on the next line.
func isContinuation(s string) bool {
	if !strings.HasPrefix(s, "(") {
		return false
	}
	end := strings.IndexByte(s, ')')
	if end < 0 {
		return false
	}
	name := s[1:end]
	return name != "" && !strings.ContainsAny(name, " ./\\\n") && strings.HasPrefix(s[end+1:], " ")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
