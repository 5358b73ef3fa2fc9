package stakeout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestWithAttemptCallback_InvokedPerAttempt(t *testing.T) {
	p := &countingProbe[int]{outcome: func(n int) (int, bool, error) {
		if n < 3 {
			return 0, false, nil
		}
		return 9, true, nil
	}}

	var mu sync.Mutex
	var attempts []Attempt

	_, err := Wait(context.Background(), p.probe, time.Second,
		WithInterval(5*time.Millisecond),
		WithLogger(testLogger()),
		WithAttemptCallback(func(a Attempt) {
			mu.Lock()
			defer mu.Unlock()
			attempts = append(attempts, a)
		}),
	)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(attempts) != 3 {
		t.Fatalf("callback invoked %d times, want 3", len(attempts))
	}
	for i, a := range attempts {
		if a.Number != i+1 {
			t.Errorf("attempts[%d].Number = %d, want %d", i, a.Number, i+1)
		}
		if a.At.IsZero() {
			t.Errorf("attempts[%d].At is zero", i)
		}
	}
	if attempts[0].Found || attempts[1].Found {
		t.Error("early attempts reported Found = true, want false")
	}
	if !attempts[2].Found {
		t.Error("final attempt reported Found = false, want true")
	}
}

func TestWithAttemptCallback_ReceivesProbeError(t *testing.T) {
	probeErr := errors.New("not there yet")
	probe := func(ctx context.Context) (int, bool, error) {
		return 0, false, probeErr
	}

	var mu sync.Mutex
	var seen []error

	_, err := Wait(context.Background(), probe, 50*time.Millisecond,
		WithInterval(10*time.Millisecond),
		WithLogger(testLogger()),
		WithAttemptCallback(func(a Attempt) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, a.Err)
		}),
	)
	if !IsTimeout(err) {
		t.Fatalf("Wait() error = %v, want timeout", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(seen) == 0 {
		t.Fatal("callback was never invoked")
	}
	for i, e := range seen {
		if !errors.Is(e, probeErr) {
			t.Errorf("seen[%d] = %v, want the probe error", i, e)
		}
	}
}

func TestWithAttemptCallback_PanicDoesNotAbortSession(t *testing.T) {
	p := &countingProbe[int]{outcome: func(n int) (int, bool, error) {
		if n < 2 {
			return 0, false, nil
		}
		return 5, true, nil
	}}

	value, err := Wait(context.Background(), p.probe, time.Second,
		WithInterval(5*time.Millisecond),
		WithLogger(testLogger()),
		WithAttemptCallback(func(a Attempt) {
			panic("callback bug")
		}),
	)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if value != 5 {
		t.Errorf("Wait() = %d, want 5", value)
	}
}

func TestWithAttemptCallback_MultipleInRegistrationOrder(t *testing.T) {
	probe := func(ctx context.Context) (int, bool, error) {
		return 1, true, nil
	}

	var mu sync.Mutex
	var order []string

	_, err := Wait(context.Background(), probe, time.Second,
		WithLogger(testLogger()),
		WithAttemptCallback(func(a Attempt) {
			mu.Lock()
			order = append(order, "first")
			mu.Unlock()
		}),
		WithAttemptCallback(func(a Attempt) {
			mu.Lock()
			order = append(order, "second")
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("callback order = %v, want [first second]", order)
	}
}
