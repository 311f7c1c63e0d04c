// Package version holds build metadata for the quill binary.
// The variables can be overridden at build time via -ldflags.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

var (
	// Version is the plain semantic version; it is what the language
	// server reports to clients.
	Version = "0.3.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Colored renders Version with each numeric component highlighted.
// Pre-release and build suffixes are left plain.
func Colored() string {
	core, suffix := Version, ""
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core, suffix = core[:i], core[i:]
	}
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	return majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2]) + suffix
}
