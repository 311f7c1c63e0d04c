// Package pipeline runs the batch diagnostics behind `quill check`: load a
// directory, follow includes, analyze, optionally lint, then collect.
package pipeline

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageLoad reads and parses the sources under the target root.
	StageLoad Stage = "load"
	// StageDiscover loads include targets found outside the root listing.
	StageDiscover Stage = "discover"
	// StageAnalyze computes per-document diagnostics.
	StageAnalyze Stage = "analyze"
	// StageChktex runs the external linter.
	StageChktex Stage = "chktex"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a file (or for the whole run when File is empty).
// File is the display path relative to the target root.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from
// several goroutines.
type ProgressSink interface {
	OnEvent(Event)
}
