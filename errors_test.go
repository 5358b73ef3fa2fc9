package stakeout

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestTimeoutError_DefaultMessage(t *testing.T) {
	err := &TimeoutError{Timeout: 200 * time.Millisecond, Attempts: 4}

	if got := err.Error(); got != "timeout 200ms expired" {
		t.Errorf("Error() = %q, want %q", got, "timeout 200ms expired")
	}
}

func TestTimeoutError_CustomMessage(t *testing.T) {
	err := &TimeoutError{
		Message: "did not find a bookmark named api",
		Timeout: time.Second,
	}

	if got := err.Error(); got != "did not find a bookmark named api" {
		t.Errorf("Error() = %q, want the custom message", got)
	}
}

func TestTimeoutError_IncludesLastProbeError(t *testing.T) {
	err := &TimeoutError{
		Timeout: time.Second,
		LastErr: errors.New("connection refused"),
	}

	if got := err.Error(); !strings.Contains(got, "connection refused") {
		t.Errorf("Error() = %q, want it to mention the last probe error", got)
	}
}

func TestTimeoutError_Unwrap(t *testing.T) {
	probeErr := errors.New("not there yet")
	err := &TimeoutError{Timeout: time.Second, LastErr: probeErr}

	if !errors.Is(err, probeErr) {
		t.Error("errors.Is(TimeoutError, lastErr) = false, want true via Unwrap")
	}
}

func TestIsTimeout(t *testing.T) {
	te := &TimeoutError{Timeout: time.Second}

	if !IsTimeout(te) {
		t.Error("IsTimeout(*TimeoutError) = false, want true")
	}
	if !IsTimeout(fmt.Errorf("wait failed: %w", te)) {
		t.Error("IsTimeout(wrapped *TimeoutError) = false, want true")
	}
	if IsTimeout(errors.New("other")) {
		t.Error("IsTimeout(other error) = true, want false")
	}
	if IsTimeout(nil) {
		t.Error("IsTimeout(nil) = true, want false")
	}
}

func TestConfigError_Message(t *testing.T) {
	err := &ConfigError{Reason: "timeout must be positive, got -1s"}

	if got := err.Error(); got != "stakeout: timeout must be positive, got -1s" {
		t.Errorf("Error() = %q", got)
	}
}

func TestFatal_Nil(t *testing.T) {
	if Fatal(nil) != nil {
		t.Error("Fatal(nil) != nil, want nil")
	}
}

func TestFatal_PreservesError(t *testing.T) {
	cause := errors.New("unauthorized")
	err := Fatal(cause)

	if err.Error() != "unauthorized" {
		t.Errorf("Fatal(err).Error() = %q, want %q", err.Error(), "unauthorized")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(Fatal(err), err) = false, want true")
	}

	unwrapped, ok := asFatal(err)
	if !ok {
		t.Fatal("asFatal(Fatal(err)) = false, want true")
	}
	if unwrapped != cause {
		t.Errorf("asFatal() = %v, want the original error", unwrapped)
	}
}

func TestFatal_SurvivesWrapping(t *testing.T) {
	cause := errors.New("unauthorized")
	wrapped := fmt.Errorf("probe: %w", Fatal(cause))

	unwrapped, ok := asFatal(wrapped)
	if !ok {
		t.Fatal("asFatal(wrapped Fatal) = false, want true")
	}
	if !errors.Is(unwrapped, cause) {
		t.Errorf("asFatal() = %v, want to reach the original error", unwrapped)
	}
}

func TestAsFatal_PlainError(t *testing.T) {
	if _, ok := asFatal(errors.New("transient")); ok {
		t.Error("asFatal(plain error) = true, want false")
	}
}
