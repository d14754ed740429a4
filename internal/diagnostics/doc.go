// Package diagnostics holds back the packaging engine's output while it runs
// and replays it once the run is over, so noisy engine logs do not tear
// through the progress display but are never lost either.
package diagnostics
