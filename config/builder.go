package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jpalmerr/stakeout"
	"github.com/jpalmerr/stakeout/internal/target"
)

// Check is a named, ready-to-run wait built from one [TargetConfig].
//
// The CLI constructs a stakeout session per check:
//
//	sess, err := stakeout.New(check.Probe, check.Timeout,
//	    stakeout.WithInterval(check.Interval),
//	    stakeout.WithMessage(check.Message),
//	)
type Check struct {
	// Name is the target's display name.
	Name string

	// Probe reports whether the target is ready.
	Probe stakeout.Probe[struct{}]

	// Timeout is the wait deadline (target override or global default).
	Timeout time.Duration

	// Interval is the delay between attempts.
	Interval time.Duration

	// Message describes the target for timeout errors.
	Message string
}

// BuildChecks converts parsed configuration into runnable checks.
//
// All checks share the given checker so HTTP connections are pooled
// across targets. Global timeout and interval defaults are resolved
// against per-target overrides here; the returned checks are
// self-contained.
func BuildChecks(cfg *Config, checker *target.Checker) ([]Check, error) {
	checks := make([]Check, 0, len(cfg.Targets))

	for _, tc := range cfg.Targets {
		check, err := buildCheck(tc, cfg, checker)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", tc.Name, err)
		}
		checks = append(checks, check)
	}

	return checks, nil
}

// buildCheck converts a single TargetConfig into a Check.
func buildCheck(tc TargetConfig, cfg *Config, checker *target.Checker) (Check, error) {
	var (
		check func(ctx context.Context) error
		where string
	)

	switch tc.Kind() {
	case "http":
		method, url, headers, status := tc.Method, tc.HTTP, tc.Headers, tc.Status
		check = func(ctx context.Context) error {
			return checker.HTTP(ctx, method, url, headers, status)
		}
		where = tc.HTTP
	case "tcp":
		addr := tc.TCP
		check = func(ctx context.Context) error {
			return checker.TCP(ctx, addr)
		}
		where = tc.TCP
	case "file":
		path := tc.File
		check = func(ctx context.Context) error {
			return checker.File(ctx, path)
		}
		where = tc.File
	default:
		// config validation rejects this before building
		return Check{}, fmt.Errorf("no target kind set")
	}

	timeout := cfg.Timeout.Duration()
	if tc.Timeout != 0 {
		timeout = tc.Timeout.Duration()
	}
	interval := cfg.Interval.Duration()
	if tc.Interval != 0 {
		interval = tc.Interval.Duration()
	}

	probe := stakeout.Condition(func(ctx context.Context) (bool, error) {
		if err := check(ctx); err != nil {
			return false, err
		}
		return true, nil
	})

	return Check{
		Name:     tc.Name,
		Probe:    probe,
		Timeout:  timeout,
		Interval: interval,
		Message:  fmt.Sprintf("%s (%s %s) was not ready in %s", tc.Name, tc.Kind(), where, timeout),
	}, nil
}
