// Package target provides readiness checks for the kinds of targets the
// stakeout CLI can wait on: HTTP endpoints, TCP listeners, and files.
//
// Each check returns nil when the target is ready and an error otherwise,
// so checks compose directly into stakeout probes via the root package's
// combinators. A single [Checker] carries the pooled HTTP client and
// dialer shared by all checks.
//
// This package is internal to stakeout. Library users write their own
// probes; the CLI builds its probes from this vocabulary.
package target
