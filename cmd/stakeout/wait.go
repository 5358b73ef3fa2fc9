package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jpalmerr/stakeout"
	"github.com/jpalmerr/stakeout/config"
	"github.com/jpalmerr/stakeout/internal/report"
	"github.com/jpalmerr/stakeout/internal/target"
	"github.com/spf13/cobra"
)

// newLogger creates a JSON logger for CLI use.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// waitCmd blocks until every configured target is ready.
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait until all configured targets are ready",
	Long: `Wait until every target in the config file becomes ready.

The command will:
  - Load configuration from the specified YAML file
  - Poll every target concurrently (bounded by max_concurrency)
  - Print each target's outcome as it settles

Exit codes:
  0 - Every target became ready before its deadline
  1 - At least one target timed out or failed

The command also stops on SIGINT/SIGTERM.

Example:
  stakeout wait -c targets.yaml
  stakeout wait --config /etc/stakeout/targets.yaml --verbose`,
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)

	waitCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	waitCmd.Flags().BoolP("verbose", "v", false, "log every probe attempt")
	_ = waitCmd.MarkFlagRequired("config")
}

func runWait(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(verbose)

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	checker := target.NewChecker()
	defer checker.Close()

	checks, err := config.BuildChecks(cfg, checker)
	if err != nil {
		return fmt.Errorf("failed to build checks: %w", err)
	}

	logger.Info("config loaded",
		"targets", len(checks),
		"max_concurrency", cfg.MaxConcurrency,
	)

	tracker := report.NewTracker()
	for _, check := range checks {
		tracker.Update(report.WaitStatus{
			Name:      check.Name,
			State:     report.StateWaiting,
			UpdatedAt: time.Now(),
		})
	}

	// stream terminal transitions to stdout while waits run
	updates := tracker.Subscribe()
	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		for status := range updates {
			switch status.State {
			case report.StateReady:
				fmt.Printf("ready    %s (%d attempts, %s)\n",
					status.Name, status.Attempts, status.Elapsed.Round(time.Millisecond))
			case report.StateTimeout, report.StateFailed:
				fmt.Printf("%-8s %s: %s\n", status.State, status.Name, *status.Error)
			}
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// worker-pool style bound on simultaneous waits
	semaphore := make(chan struct{}, cfg.MaxConcurrency)
	var wg sync.WaitGroup
	for _, check := range checks {
		wg.Add(1)
		go func(c config.Check) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				recordFailure(tracker, c.Name, 0, 0, ctx.Err())
				return
			}

			runCheck(ctx, c, tracker, logger)
		}(check)
	}
	wg.Wait()

	tracker.Unsubscribe(updates)
	<-printerDone

	_, allReady := tracker.Settled()
	if !allReady {
		return fmt.Errorf("not all targets became ready")
	}

	logger.Info("all targets ready", "targets", len(checks))
	return nil
}

// runCheck runs one target's wait session and records its outcome.
func runCheck(ctx context.Context, c config.Check, tracker *report.Tracker, logger *slog.Logger) {
	start := time.Now()

	// once the session resolves, late in-flight attempt callbacks must
	// not overwrite the terminal state
	var settled atomic.Bool
	var attempts atomic.Int64

	sess, err := stakeout.New(c.Probe, c.Timeout,
		stakeout.WithInterval(c.Interval),
		stakeout.WithMessage(c.Message),
		stakeout.WithLogger(logger.With("target", c.Name)),
		stakeout.WithAttemptCallback(func(a stakeout.Attempt) {
			attempts.Store(int64(a.Number))
			if settled.Load() {
				return
			}
			tracker.Update(report.WaitStatus{
				Name:      c.Name,
				State:     report.StateWaiting,
				Attempts:  a.Number,
				Elapsed:   time.Since(start),
				UpdatedAt: a.At,
			})
		}),
	)
	if err != nil {
		recordFailure(tracker, c.Name, 0, time.Since(start), err)
		return
	}

	_, err = sess.Run(ctx)
	settled.Store(true)
	made := int(attempts.Load())
	elapsed := time.Since(start)

	switch {
	case err == nil:
		tracker.Update(report.WaitStatus{
			Name:      c.Name,
			State:     report.StateReady,
			Attempts:  made,
			Elapsed:   elapsed,
			UpdatedAt: time.Now(),
		})
	case stakeout.IsTimeout(err):
		msg := err.Error()
		tracker.Update(report.WaitStatus{
			Name:      c.Name,
			State:     report.StateTimeout,
			Attempts:  made,
			Elapsed:   elapsed,
			Error:     &msg,
			UpdatedAt: time.Now(),
		})
	default:
		recordFailure(tracker, c.Name, made, elapsed, err)
	}
}

// recordFailure marks a wait as failed with the given error.
func recordFailure(tracker *report.Tracker, name string, attempts int, elapsed time.Duration, err error) {
	msg := err.Error()
	tracker.Update(report.WaitStatus{
		Name:      name,
		State:     report.StateFailed,
		Attempts:  attempts,
		Elapsed:   elapsed,
		Error:     &msg,
		UpdatedAt: time.Now(),
	})
}
