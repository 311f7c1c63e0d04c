package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff      Level = iota
	LevelError          // only crash dumps from the ring
	LevelRequest        // server lifecycle and requests
	LevelDocument       // plus per-document analysis
	LevelDebug          // everything
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelRequest:
		return "request"
	case LevelDocument:
		return "document"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a flag value into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off", "":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "request":
		return LevelRequest, nil
	case "document":
		return LevelDocument, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|request|document|debug)", s)
	}
}

// ShouldEmit reports whether events of scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelRequest:
		return scope <= ScopeRequest
	case LevelDocument:
		return scope <= ScopeDocument
	case LevelDebug:
		return true
	}
	return false
}
