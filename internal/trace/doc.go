// Package trace is the logging layer of capycop: level-gated, structured
// span events carried through context.Context.
//
// Enable tracing via command-line flags:
//
//	capycop lint --trace=- --trace-level=detail spec/
//
// Tracers:
//
//   - Nop: zero-overhead no-op tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: last N events in memory, dumped on failure
//   - MultiTracer: fan-out to several tracers
//
// Scopes from coarse to fine are driver (a CLI command), file (one source
// file), pass (load, parse, walk, correct) and rule (one finding). The
// level picks how deep events are emitted. The error level keeps pass-deep
// events in the ring only; the CLI prints them when a run fails.
//
// Spans take their tracer and parent from the context. File spans carry
// the file path, and every span and finding below them inherits it:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.BeginFile(ctx, "analyze", path)
//	defer span.End("")
//	walk := span.Child(trace.ScopePass, "walk")
//	walk.Finding(rule, detail)
package trace
