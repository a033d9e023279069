// Package trace records what the resolver is doing while it does it.
//
// Sessions, database queries and driver passes open spans on a Tracer taken
// from the context. A disabled tracer costs one interface call per span.
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeDriver, "index")
//	defer span.End("")
//
// A resolver session keeps trace.Anchor(ctx) and opens its lookups with
// Child, so they nest under the driver pass that created the session.
// Spans of filtered scopes are silent and pass their parent through.
//
// Levels select how deep the output goes:
//
//   - LevelPhase: driver passes and database queries
//   - LevelDetail: plus per-session work (container lookup, child enumeration)
//   - LevelDebug: plus individual node resolutions
//
// Tracers are Stream (write through), Ring (keep the tail in memory for a
// dump after a failure) and Multi (both).
package trace
