package stakeout

import (
	"errors"
	"fmt"
	"time"
)

// ConfigError reports an invalid session configuration.
//
// A ConfigError is returned by [New] (and by option functions) before any
// probe attempt is made. It is never returned once a session has started
// running, with one exception: running a session twice.
type ConfigError struct {
	// Reason describes what was invalid.
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "stakeout: " + e.Reason
}

// TimeoutError reports that a session's deadline elapsed before any probe
// attempt yielded a value.
//
// TimeoutError carries diagnostic context about the failed wait: how long
// the session was allowed to run, how many attempts were made, and the
// last error the probe returned (if any) before the deadline. The last
// probe error is exposed via Unwrap so callers can inspect it with
// [errors.Is] and [errors.As].
type TimeoutError struct {
	// Message is the caller-supplied description of what was being waited
	// for, set via [WithMessage]. Empty if the caller did not provide one.
	Message string

	// Timeout is the session's configured deadline duration.
	Timeout time.Duration

	// Attempts is the number of probe invocations made before the
	// deadline elapsed. At least 1.
	Attempts int

	// LastErr is the most recent error swallowed during polling, or nil
	// if every attempt returned cleanly with "not yet".
	LastErr error
}

// Error implements the error interface.
//
// With no message configured the text is "timeout <duration> expired".
// A caller-supplied message replaces the default text; the last swallowed
// probe error, when present, is appended in both cases.
func (e *TimeoutError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("timeout %v expired", e.Timeout)
	}
	if e.LastErr != nil {
		return fmt.Sprintf("%s (last probe error: %v)", msg, e.LastErr)
	}
	return msg
}

// Unwrap returns the last swallowed probe error, if any.
func (e *TimeoutError) Unwrap() error {
	return e.LastErr
}

// IsTimeout reports whether err is, or wraps, a [*TimeoutError].
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// fatalError marks a probe error as terminal. It is created by [Fatal]
// and unwrapped before crossing the session boundary, so callers never
// observe the wrapper type.
type fatalError struct {
	err error
}

// Error implements the error interface.
func (e *fatalError) Error() string {
	return e.err.Error()
}

// Unwrap returns the wrapped error.
func (e *fatalError) Unwrap() error {
	return e.err
}

// Fatal marks a probe error as permanent.
//
// By default a session swallows probe errors and keeps polling. When a
// probe can tell that its failure will never resolve itself (a malformed
// selector, an authorization failure, a closed client) it should return
// Fatal(err) instead. The session aborts immediately and [Session.Run]
// returns the original err (unwrapped).
//
// Fatal(nil) returns nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// asFatal extracts the underlying error if err was marked with [Fatal].
func asFatal(err error) (error, bool) {
	var fe *fatalError
	if errors.As(err, &fe) {
		return fe.err, true
	}
	return nil, false
}
