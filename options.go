package stakeout

import (
	"log/slog"
	"time"
)

// sessionConfig holds mutable state during session construction.
type sessionConfig struct {
	interval         time.Duration
	message          string
	logger           *slog.Logger
	attemptCallbacks []func(Attempt)
}

// Option is a function that configures a [Session] during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] and [Wait] in a type-safe,
// extensible way. Options return an error if validation fails.
//
// Built-in options: [WithInterval], [WithMessage], [WithLogger],
// [WithAttemptCallback].
type Option func(*sessionConfig) error

// WithInterval sets the delay between consecutive probe attempts.
//
// The interval starts counting after an attempt's outcome is known, so
// attempts never overlap: effective spacing = interval + attempt duration.
// Defaults to 100 milliseconds if not specified.
//
// Example:
//
//	sess, err := stakeout.New(probe, time.Minute,
//	    stakeout.WithInterval(500*time.Millisecond),
//	)
//
// Returns an error if the duration is zero or negative.
func WithInterval(d time.Duration) Option {
	return func(cfg *sessionConfig) error {
		if d <= 0 {
			return &ConfigError{Reason: "interval must be positive"}
		}
		cfg.interval = d
		return nil
	}
}

// WithMessage sets a human-readable description of what the session is
// waiting for, used to construct the [*TimeoutError] if the deadline
// elapses.
//
// The message should identify the sought entity so timeout failures are
// self-explanatory:
//
//	stakeout.WithMessage(fmt.Sprintf("did not find an instance with alias %q", alias))
//
// If not specified, the timeout error reads "timeout <duration> expired".
//
// Returns an error if the message is empty (omit the option instead).
func WithMessage(msg string) Option {
	return func(cfg *sessionConfig) error {
		if msg == "" {
			return &ConfigError{Reason: "message cannot be empty"}
		}
		cfg.message = msg
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the session.
//
// The session logs swallowed probe errors at debug level and recovered
// probe panics at error level. If not specified, [slog.Default] is used.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	sess, err := stakeout.New(probe, time.Minute, stakeout.WithLogger(logger))
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *sessionConfig) error {
		if logger == nil {
			return &ConfigError{Reason: "logger cannot be nil"}
		}
		cfg.logger = logger
		return nil
	}
}

// WithAttemptCallback registers a function to be called after every probe
// attempt, whether it found a value, reported "not yet", or errored.
//
// The callback receives an [Attempt] describing the outcome. Multiple
// callbacks may be registered by calling WithAttemptCallback multiple
// times; they execute in registration order.
//
// IMPORTANT: Callbacks must be non-blocking. They are invoked
// synchronously from the polling loop, so a slow callback delays the next
// attempt. Panics within callbacks are recovered and logged; they do not
// abort the session.
//
// Example:
//
//	sess, err := stakeout.New(probe, time.Minute,
//	    stakeout.WithAttemptCallback(func(a stakeout.Attempt) {
//	        log.Printf("attempt %d: found=%v err=%v", a.Number, a.Found, a.Err)
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithAttemptCallback(cb func(Attempt)) Option {
	return func(cfg *sessionConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.attemptCallbacks = append(cfg.attemptCallbacks, cb)
		return nil
	}
}
