package stakeout

import "context"

// Condition returns a [Probe] that polls a boolean check.
//
// The check reports whether the awaited condition currently holds. Errors
// from the check follow the session's normal policy: swallowed and
// retried unless wrapped with [Fatal]. The probe's value carries no
// information; discard it.
//
// Example:
//
//	probe := stakeout.Condition(func(ctx context.Context) (bool, error) {
//	    _, err := os.Stat("/var/run/app/ready")
//	    if errors.Is(err, fs.ErrNotExist) {
//	        return false, nil
//	    }
//	    return err == nil, err
//	})
func Condition(check func(ctx context.Context) (bool, error)) Probe[struct{}] {
	return func(ctx context.Context) (struct{}, bool, error) {
		ok, err := check(ctx)
		if err != nil {
			return struct{}{}, false, err
		}
		return struct{}{}, ok, nil
	}
}

// Find returns a [Probe] that looks up an element in a dynamic,
// possibly-empty collection, retrying until one matches.
//
// On every attempt, list is invoked to fetch the current collection and
// match is applied to each element in order; the first match resolves the
// session. An empty collection, or one with no matching element, is
// "not yet".
//
// Example:
//
//	probe := stakeout.Find(listInstances, func(inst Instance) bool {
//	    return inst.Alias == alias
//	})
func Find[T any](list func(ctx context.Context) ([]T, error), match func(T) bool) Probe[T] {
	return func(ctx context.Context) (T, bool, error) {
		var zero T

		items, err := list(ctx)
		if err != nil {
			return zero, false, err
		}

		for _, item := range items {
			if match(item) {
				return item, true, nil
			}
		}
		return zero, false, nil
	}
}

// NonEmpty returns a [Probe] that waits for a collection to fill.
//
// On every attempt, collect is invoked; the session resolves with the
// first non-empty slice observed. Nil and empty slices are "not yet".
//
// Example:
//
//	notifications, err := stakeout.Wait(ctx,
//	    stakeout.NonEmpty(center.Notifications), 5*time.Second)
func NonEmpty[T any](collect func(ctx context.Context) ([]T, error)) Probe[[]T] {
	return func(ctx context.Context) ([]T, bool, error) {
		items, err := collect(ctx)
		if err != nil {
			return nil, false, err
		}
		if len(items) == 0 {
			return nil, false, nil
		}
		return items, true, nil
	}
}

// Succeeds returns a [Probe] that retries a side-effecting open until it
// stops erroring.
//
// Errors from open are surfaced to the session and follow its normal
// policy: failing is the expected state until the resource exists, so
// errors are swallowed, logged, and retried (the most recent one is
// attached to a [*TimeoutError]) unless open wraps an error with [Fatal].
// Because probe attempts are strictly sequential, open is never invoked
// in overlapping fashion.
//
// Example:
//
//	conn, err := stakeout.Wait(ctx, stakeout.Succeeds(func(ctx context.Context) (*Conn, error) {
//	    return dialBroker(ctx, addr)
//	}), time.Minute)
func Succeeds[T any](open func(ctx context.Context) (T, error)) Probe[T] {
	return func(ctx context.Context) (T, bool, error) {
		value, err := open(ctx)
		if err != nil {
			var zero T
			return zero, false, err
		}
		return value, true, nil
	}
}

// FirstOf returns a [Probe] that tries each of the given probes in order
// on every attempt, resolving with the first value any of them yields.
//
// A probe that errors is skipped for that attempt (the error is dropped;
// the next probe in the list still runs), except errors wrapped with
// [Fatal], which surface immediately and abort the session. If no probe
// yields a value, the attempt is "not yet".
//
// Example:
//
//	probe := stakeout.FirstOf(
//	    stakeout.Find(listBookmarks, byName(name)),
//	    stakeout.Find(listRecent, byName(name)),
//	)
func FirstOf[T any](probes ...Probe[T]) Probe[T] {
	return func(ctx context.Context) (T, bool, error) {
		var zero T

		for _, probe := range probes {
			value, found, err := probe(ctx)
			if err != nil {
				if _, ok := asFatal(err); ok {
					return zero, false, err
				}
				continue
			}
			if found {
				return value, true, nil
			}
		}
		return zero, false, nil
	}
}
