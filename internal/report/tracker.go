package report

import (
	"sync"
	"time"
)

// State describes where a named wait currently is in its lifecycle.
type State string

const (
	// StateWaiting means the wait is still polling its target.
	StateWaiting State = "waiting"

	// StateReady means the target became ready before the deadline.
	StateReady State = "ready"

	// StateTimeout means the deadline elapsed before the target was ready.
	StateTimeout State = "timeout"

	// StateFailed means the wait aborted with a permanent error.
	StateFailed State = "failed"
)

// terminal reports whether a state is final.
func (s State) terminal() bool {
	return s == StateReady || s == StateTimeout || s == StateFailed
}

// WaitStatus is the current state of one named wait.
type WaitStatus struct {
	// Name identifies the wait (the target's configured name).
	Name string

	// State is the wait's lifecycle state.
	State State

	// Attempts is the number of probe invocations made so far.
	Attempts int

	// Elapsed is how long the wait has been (or was) running.
	Elapsed time.Duration

	// Error describes the failure for timeout and failed states.
	// nil otherwise.
	Error *string

	// UpdatedAt is the timestamp of the last state change.
	UpdatedAt time.Time
}

// Tracker is concurrent storage of wait states with a publish-subscribe
// mechanism for streaming updates.
//
// Statuses are keyed by wait name, with new updates replacing previous
// values. Subscribers receive updates via buffered channels (buffer size
// 100). Updates are sent non-blocking; if a subscriber's buffer is full,
// the update is dropped for that subscriber to prevent blocking the
// running waits.
type Tracker struct {
	mu       sync.RWMutex
	statuses map[string]WaitStatus

	subMu       sync.RWMutex
	subscribers map[chan WaitStatus]struct{}
}

// NewTracker creates an empty [Tracker].
//
// The tracker is immediately ready for use. No cleanup is required when
// done.
func NewTracker() *Tracker {
	return &Tracker{
		statuses:    make(map[string]WaitStatus),
		subscribers: make(map[chan WaitStatus]struct{}),
	}
}

// Update stores a [WaitStatus] and notifies all subscribers.
//
// The status is stored using its Name as the key. Subsequent updates with
// the same name replace the previous value, except that a terminal state
// is never replaced by a non-terminal one: a straggling progress update
// arriving after a wait has settled is dropped. All subscribers receive
// stored updates (unless their buffer is full).
func (t *Tracker) Update(status WaitStatus) {
	t.mu.Lock()
	if prev, ok := t.statuses[status.Name]; ok && prev.State.terminal() && !status.State.terminal() {
		t.mu.Unlock()
		return
	}
	t.statuses[status.Name] = status
	t.mu.Unlock()

	t.notifySubscribers(status)
}

// Snapshot returns a copy of all currently stored wait states.
//
// The returned slice is a copy; modifications do not affect the tracker.
// Order is not guaranteed.
func (t *Tracker) Snapshot() []WaitStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	statuses := make([]WaitStatus, 0, len(t.statuses))
	for _, status := range t.statuses {
		statuses = append(statuses, status)
	}
	return statuses
}

// Settled reports whether every tracked wait has reached a terminal state
// and whether all of them are ready.
//
// With no tracked waits, Settled returns (true, true).
func (t *Tracker) Settled() (settled, allReady bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	allReady = true
	for _, status := range t.statuses {
		if !status.State.terminal() {
			return false, false
		}
		if status.State != StateReady {
			allReady = false
		}
	}
	return true, allReady
}

// Subscribe creates a new subscription and returns a channel for
// receiving updates.
//
// The returned channel has a buffer of 100 messages. If the buffer fills
// (slow consumer), new updates are dropped for this subscriber.
//
// Caller must call [Tracker.Unsubscribe] when done to prevent resource
// leaks.
func (t *Tracker) Subscribe() <-chan WaitStatus {
	ch := make(chan WaitStatus, 100)

	t.subMu.Lock()
	t.subscribers[ch] = struct{}{}
	t.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// After calling Unsubscribe, the channel will be closed and no further
// updates will be sent. Safe to call multiple times or with an unknown
// channel.
func (t *Tracker) Unsubscribe(ch <-chan WaitStatus) {
	t.subMu.Lock()
	defer t.subMu.Unlock()

	for subCh := range t.subscribers {
		if subCh == ch {
			delete(t.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the status to all active subscribers.
//
// This is non-blocking: if a subscriber's channel buffer is full, the
// message is dropped for that subscriber rather than blocking the wait.
func (t *Tracker) notifySubscribers(status WaitStatus) {
	t.subMu.RLock()
	defer t.subMu.RUnlock()

	for ch := range t.subscribers {
		select {
		case ch <- status:
		default:
			// subscriber is slow, drop the message
		}
	}
}
