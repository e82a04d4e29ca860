// Package fetch is the concurrent download engine.
//
// For each forecast date the engine lists the remote catalog, filters the
// descriptors by pattern, and hands the matching set to a bounded worker
// pool. Every task streams its file to a temporary sibling path and renames
// it into place only on full success, so the output directory never holds a
// partial file under a final name.
//
// # Isolation
//
// One task failing never cancels its siblings, and in range mode one date
// failing its catalog lookup never aborts later dates; failures are carried
// in the aggregated DateResult/BulkResult instead. Argument validation
// (pattern, concurrency, range) happens before any network activity.
//
// # Retries
//
// Each task retries transient failures with capped exponential backoff.
// Attempt counts and delays are first-class values on Backoff and Outcome,
// not loop state. The per-task timeout applies to each attempt separately.
//
// # Reporting
//
// The engine pushes structured events to a Reporter sink. Implementations
// must tolerate concurrent calls and must not block; rendering lives
// outside this package.
package fetch
