// Package stakeout provides a bounded polling primitive: wait for a
// condition to become true, a value to appear, or a resource to open,
// with a hard deadline.
//
// Stakeout is designed as an SDK-first library. A wait is expressed as a
// [Probe] (a function invoked repeatedly until it reports a value) bound
// to a single-use [Session] that races the probe loop against a deadline
// timer. It follows functional programming principles with immutable
// types, pure functions, and composable configuration via the functional
// options pattern.
//
// # Quick Start
//
// Wait up to 30 seconds for a service port to accept connections:
//
//	probe := stakeout.Condition(func(ctx context.Context) (bool, error) {
//	    conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", "localhost:5432")
//	    if err != nil {
//	        return false, err // swallowed: the port is not listening yet
//	    }
//	    conn.Close()
//	    return true, nil
//	})
//
//	_, err := stakeout.Wait(ctx, probe, 30*time.Second,
//	    stakeout.WithInterval(500*time.Millisecond),
//	    stakeout.WithMessage("postgres did not accept connections"),
//	)
//
// # Sessions
//
// For more control, construct a [Session] explicitly:
//
//	sess, err := stakeout.New(probe, 30*time.Second,
//	    stakeout.WithInterval(250*time.Millisecond),
//	    stakeout.WithLogger(logger),
//	)
//	if err != nil {
//	    // invalid configuration; no probe attempt was made
//	}
//	value, err := sess.Run(ctx)
//
// A session resolves exactly once: with the first value the probe yields,
// or with a [*TimeoutError] when the deadline elapses first. Sessions are
// single use; construct a new one per wait.
//
// # Error Policy
//
// By default, errors returned by the probe are treated as "not yet" and
// the wait continues: a probe that fails because the thing it is looking
// for does not exist yet must not abort the whole wait. Swallowed errors
// are logged at debug level, and the most recent one is attached to any
// resulting [*TimeoutError]. Wrap an error with [Fatal] to mark a failure
// as permanent and abort the session immediately.
//
// # Probe Combinators
//
// Common probe shapes are provided as combinators:
//
//   - [Condition]: poll a boolean check
//   - [Find]: look up an element in a dynamic collection by predicate
//   - [NonEmpty]: wait for a collection to become non-empty
//   - [Succeeds]: retry a side-effecting open until it stops erroring
//   - [FirstOf]: try several probes in order on every attempt
//
// # Standalone Binary
//
// The stakeout CLI (cmd/stakeout) waits for a set of readiness targets
// declared in a YAML file (HTTP endpoints, TCP ports, files), which is
// useful as a container entrypoint gate or CI readiness step. See the
// config package for the file format.
package stakeout
