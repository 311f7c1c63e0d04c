package buildlog

import "fmt"

// Level is the severity of a log entry.
type Level uint8

const (
	LevelError Level = iota
	LevelWarning
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "warning"
}

// Entry is one problem reported in a log.
type Entry struct {
	Level   Level
	Message string
	// File is the source file as written in the log, usually relative to the
	// directory the engine ran in. Empty means the main file.
	File string
	// Line is 1-based; 0 means unknown.
	Line int
}

func (e Entry) String() string {
	loc := e.File
	if loc == "" {
		loc = "<main>"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	return fmt.Sprintf("%s %s: %s", e.Level, loc, e.Message)
}
