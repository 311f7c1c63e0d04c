// Package diagnostics aggregates the problems reported for a workspace.
//
// Document-local findings (grammar checks, build logs, chktex) are stored
// per URI and replaced whenever their source document changes. Findings that
// depend on several documents (citations, labels) are recomputed from the
// current workspace on every Get. Documents owned by the TeX distribution
// never contribute to the output.
//
// A Manager is not safe for concurrent use. The language server owns one
// Manager together with its Workspace and serializes every call.
package diagnostics
