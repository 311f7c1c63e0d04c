package config

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPattern marks a diagnostics pattern that failed to compile.
var ErrInvalidPattern = errors.New("invalid diagnostics pattern")

// Patterns is the compiled allow/deny message filter.
type Patterns struct {
	allowed []*regexp.Regexp
	ignored []*regexp.Regexp
}

// CompilePatterns compiles both lists. Patterns that fail to compile are
// dropped; the returned error joins one ErrInvalidPattern per failure.
func CompilePatterns(allowed, ignored []string) (*Patterns, error) {
	var errs []error
	compile := func(list []string) []*regexp.Regexp {
		out := make([]*regexp.Regexp, 0, len(list))
		for _, src := range list {
			re, err := regexp.Compile(src)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w %q: %w", ErrInvalidPattern, src, err))
				continue
			}
			out = append(out, re)
		}
		return out
	}
	p := &Patterns{allowed: compile(allowed), ignored: compile(ignored)}
	return p, errors.Join(errs...)
}

// Allow reports whether msg survives the filter: it must match at least one
// allowed pattern when any are configured, and no ignored pattern.
func (p *Patterns) Allow(msg string) bool {
	if p == nil {
		return true
	}
	if len(p.allowed) > 0 {
		matched := false
		for _, re := range p.allowed {
			if re.MatchString(msg) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, re := range p.ignored {
		if re.MatchString(msg) {
			return false
		}
	}
	return true
}

// Empty reports whether the filter accepts everything.
func (p *Patterns) Empty() bool {
	return p == nil || len(p.allowed) == 0 && len(p.ignored) == 0
}
