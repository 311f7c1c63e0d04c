package distro

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// DiscoverRoots asks kpsewhich for the TEXMF search path and returns the
// existing directories in search order.
func DiscoverRoots(ctx context.Context, kpsewhich string) ([]string, error) {
	if kpsewhich == "" {
		kpsewhich = "kpsewhich"
	}
	exe, err := exec.LookPath(kpsewhich)
	if err != nil {
		return nil, fmt.Errorf("distro: %w", err)
	}
	// #nosec G204 -- fixed arguments, executable from PATH or configuration
	out, err := exec.CommandContext(ctx, exe, "-var-value", "TEXMF").Output()
	if err != nil {
		return nil, fmt.Errorf("distro: kpsewhich: %w", err)
	}
	return SplitTexmf(strings.TrimSpace(string(out))), nil
}

// SplitTexmf expands a kpathsea path value such as
// "{!!/home/u/texmf,!!/usr/share/texmf-dist}" into plain directories.
func SplitTexmf(value string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range expandBraces(value) {
		for _, p := range filepath.SplitList(part) {
			p = strings.TrimPrefix(strings.TrimSpace(p), "!!")
			if p == "" {
				continue
			}
			p = filepath.Clean(p)
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// expandBraces handles one level of {a,b} alternatives, which is what
// texmf.cnf uses in practice.
func expandBraces(s string) []string {
	open := strings.IndexByte(s, '{')
	if open < 0 {
		return []string{s}
	}
	end := strings.IndexByte(s[open:], '}')
	if end < 0 {
		return []string{s}
	}
	end += open
	prefix, suffix := s[:open], s[end+1:]
	var out []string
	for _, alt := range strings.Split(s[open+1:end], ",") {
		out = append(out, expandBraces(prefix+alt+suffix)...)
	}
	return out
}
