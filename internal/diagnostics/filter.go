package diagnostics

import (
	"quill/internal/config"
	"quill/internal/diag"
)

// filterByPatterns keeps diagnostics whose message passes the configured
// allow and ignore lists.
func filterByPatterns(results diag.Set, cfg *config.Config) {
	patterns := cfg.Diagnostics.Patterns()
	if patterns.Empty() {
		return
	}
	results.Filter(func(d diag.Diagnostic) bool {
		return patterns.Allow(d.Message)
	})
}
