package source

import (
	"fmt"
)

// Span is a byte interval inside a single document.
type Span struct {
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Contains reports whether off lies in [Start, End].
func (s Span) Contains(off uint32) bool {
	return off >= s.Start && off <= s.End
}
