package stakeout

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const defaultInterval = 100 * time.Millisecond

// Probe is one poll attempt: a function invoked repeatedly by a [Session]
// until it yields a value or the session's deadline elapses.
//
// A probe reports one of three outcomes:
//
//   - (value, true, nil): found; the session resolves with value
//   - (zero, false, nil): not yet; the session retries after the interval
//   - (zero, false, err): failed; swallowed and retried by default, or
//     terminal if err is wrapped with [Fatal]
//
// The context passed to the probe is derived from the one given to
// [Session.Run], carries the session deadline, and is cancelled once the
// session resolves, so a long-running probe can bail out early. Probes
// are invoked strictly
// sequentially: a new attempt never starts before the previous one's
// outcome is known, so a probe that performs an action (opening a
// resource, issuing a request) is never run in overlapping fashion.
type Probe[T any] func(ctx context.Context) (T, bool, error)

// Attempt describes the outcome of a single probe invocation, delivered
// to callbacks registered with [WithAttemptCallback].
type Attempt struct {
	// Number is the 1-based attempt counter within the session.
	Number int

	// Found reports whether this attempt yielded a value.
	Found bool

	// Err is the error the probe returned, or nil. For attempts that
	// reported "not yet" without erroring, both Found and Err are zero.
	Err error

	// At is the time the attempt completed.
	At time.Time
}

// outcome is the write-once result cell shared between the attempt loop
// and the racing deadline timer. The loop sends at most one outcome; a
// send that loses the race is discarded with the channel.
type outcome[T any] struct {
	value T
	err   error
}

// Session is a single wait: one probe, one deadline, one result.
//
// A Session is created with [New] and executed with [Session.Run]. It
// resolves exactly once, with the first value the probe yields or with
// a [*TimeoutError] when the deadline elapses first, and is single use:
// construct a new session per wait.
//
// For the common case, the [Wait] helper constructs and runs a session
// in one call.
type Session[T any] struct {
	probe            Probe[T]
	timeout          time.Duration
	interval         time.Duration
	message          string
	logger           *slog.Logger
	attemptCallbacks []func(Attempt)

	ran atomic.Bool

	// attempt progress, read by Run when the deadline fires while the
	// loop goroutine may still be mid-attempt
	mu       sync.Mutex
	attempts int
	lastErr  error
}

// New creates a [Session] that will run probe until it yields a value or
// timeout elapses.
//
// The timeout is required and must be positive; zero or negative values
// fail immediately with a [*ConfigError] and no probe attempt is made.
// Other settings have sensible defaults:
//   - Interval between attempts: 100 milliseconds
//   - Logger: [slog.Default]
//
// Example:
//
//	sess, err := stakeout.New(probe, 30*time.Second,
//	    stakeout.WithInterval(time.Second),
//	    stakeout.WithMessage("bucket was never created"),
//	)
func New[T any](probe Probe[T], timeout time.Duration, opts ...Option) (*Session[T], error) {
	if probe == nil {
		return nil, &ConfigError{Reason: "probe cannot be nil"}
	}
	if timeout <= 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("timeout must be positive, got %v", timeout)}
	}

	cfg := &sessionConfig{
		interval: defaultInterval,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Session[T]{
		probe:            probe,
		timeout:          timeout,
		interval:         cfg.interval,
		message:          cfg.message,
		logger:           logger,
		attemptCallbacks: cfg.attemptCallbacks,
	}, nil
}

// Wait constructs a [Session] and runs it to completion.
//
// It is shorthand for [New] followed by [Session.Run]:
//
//	value, err := stakeout.Wait(ctx, probe, 30*time.Second)
//
// Configuration errors are returned before any probe attempt is made.
func Wait[T any](ctx context.Context, probe Probe[T], timeout time.Duration, opts ...Option) (T, error) {
	sess, err := New(probe, timeout, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return sess.Run(ctx)
}

// Run executes the session: it starts the deadline timer and begins
// invoking the probe sequentially, returning the first value the probe
// yields.
//
// Run blocks until one of:
//
//   - the probe finds a value: that value is returned
//   - the probe returns an error wrapped with [Fatal]: the unwrapped
//     error is returned
//   - the deadline elapses: a [*TimeoutError] is returned and no further
//     attempt starts (an attempt already in flight is allowed to finish,
//     but its result is discarded)
//   - ctx is cancelled: ctx.Err() is returned
//
// The first attempt always runs, even when the deadline is shorter than
// the time it would take to schedule the attempt loop, so a
// [*TimeoutError] reports at least one attempt.
//
// Probe errors not marked with [Fatal] are treated as "not yet": logged
// at debug level, recorded on the eventual [*TimeoutError], and retried.
//
// A session is single use. Calling Run a second time returns a
// [*ConfigError] without invoking the probe.
func (s *Session[T]) Run(ctx context.Context) (T, error) {
	var zero T

	if !s.ran.CompareAndSwap(false, true) {
		return zero, &ConfigError{Reason: "session already ran; construct a new session per wait"}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	// the probe context carries the deadline and is cancelled once the
	// session resolves, so an in-flight attempt can bail out
	loopCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	// the first attempt runs before entering the race, so the session
	// never times out with zero probe invocations
	value, found, err := s.attempt(loopCtx)
	switch {
	case err != nil:
		if fatal, ok := asFatal(err); ok {
			return zero, fatal
		}
		s.recordFailure(err)
	case found:
		if loopCtx.Err() == nil {
			return value, nil
		}
		// found after the deadline: discarded like any other late result
	}

	result := make(chan outcome[T], 1)
	if !found {
		go s.loop(loopCtx, result)
	}

	select {
	case out := <-result:
		return out.value, out.err
	case <-timer.C:
		attempts, lastErr := s.progress()
		return zero, &TimeoutError{
			Message:  s.message,
			Timeout:  s.timeout,
			Attempts: attempts,
			LastErr:  lastErr,
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// loop invokes the probe on each interval tick until it resolves the
// session or the context is cancelled. The first attempt has already run
// by the time the loop starts. It sends at most one outcome on result.
func (s *Session[T]) loop(ctx context.Context, result chan<- outcome[T]) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.interval):
		}

		value, found, err := s.attempt(ctx)

		switch {
		case err != nil:
			if fatal, ok := asFatal(err); ok {
				var zero T
				result <- outcome[T]{value: zero, err: fatal}
				return
			}
			// transient: the target may legitimately not exist yet
			s.recordFailure(err)
		case found:
			result <- outcome[T]{value: value}
			return
		}
	}
}

// attempt runs a single probe invocation with panic recovery and
// notifies attempt callbacks with the outcome.
func (s *Session[T]) attempt(ctx context.Context) (value T, found bool, err error) {
	number := s.beginAttempt()

	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()

			// log full context for debugging; callers only see the ID
			s.logger.Error("probe panic",
				"correlation_id", correlationID,
				"attempt", number,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)

			var zero T
			value = zero
			found = false
			err = Fatal(fmt.Errorf("probe panic (correlation_id: %s)", correlationID))
		}

		if err != nil {
			s.logger.Debug("probe attempt failed", "attempt", number, "error", err)
		}

		s.notifyAttempt(Attempt{Number: number, Found: found, Err: err, At: time.Now()})
	}()

	value, found, err = s.probe(ctx)
	return value, found, err
}

// notifyAttempt invokes registered attempt callbacks with panic recovery.
// Panics are logged but do not propagate into the polling loop.
func (s *Session[T]) notifyAttempt(a Attempt) {
	for _, cb := range s.attemptCallbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("attempt callback panicked",
						"panic", r,
						"attempt", a.Number,
					)
				}
			}()
			cb(a)
		}()
	}
}

// beginAttempt increments the attempt counter and returns the new count.
func (s *Session[T]) beginAttempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	return s.attempts
}

// recordFailure remembers the most recent swallowed probe error.
func (s *Session[T]) recordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

// progress returns the attempt count and last swallowed error.
func (s *Session[T]) progress() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts, s.lastErr
}

// Timeout returns the session's configured deadline duration.
func (s *Session[T]) Timeout() time.Duration {
	return s.timeout
}

// Interval returns the configured delay between probe attempts.
func (s *Session[T]) Interval() time.Duration {
	return s.interval
}
