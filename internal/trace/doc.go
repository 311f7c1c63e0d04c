// Package trace records what the language server is doing.
//
// Events are grouped by scope: the server lifecycle, individual client
// requests and notifications, per-document analysis, and fine-grained
// analyzer steps. The level chosen on the command line decides which
// scopes reach the output:
//
//	quill lsp --trace=/tmp/quill.ndjson --trace-level=document
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeRequest, "textDocument/hover", 0)
//	defer span.End("")
//
// A RingTracer keeps the most recent events in memory so they can be dumped
// when the server crashes or on request.
package trace
