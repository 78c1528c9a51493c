// Package env defines the Environment: the single capability seam between
// deterministic reducer/aggregation logic and real-world I/O.
//
// An Environment provides four primitives:
//   - Fetch: perform an HTTP-like request and return the response body
//   - Storage (GetRaw/SetRaw): load and save string values by key
//   - Now: read the current time
//   - Exec: hand a task to the executor for independent progress
//
// Typed helpers (FetchJSON, GetValue, SetValue) layer JSON encoding on top
// of the primitives, so implementations stay small and every implementation
// shares the same error taxonomy (see Error).
//
// Implementations must be safe for concurrent use: effects scheduled through
// Exec call back into the same Environment from many goroutines.
//
// Live is the production implementation. The deterministic double lives in
// internal/testenv.
package env
