// Demo of the stakeout library: wait for a service that comes up late.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jpalmerr/stakeout"
)

func main() {
	// simulate a slow-starting service: the listener appears after 2s
	go func() {
		time.Sleep(2 * time.Second)
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = fmt.Fprintln(w, `{"status":"ok"}`)
		})
		_ = http.ListenAndServe(":9999", nil)
	}()

	// resource-open probe: retry the request until it stops erroring
	probe := stakeout.Succeeds(func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://localhost:9999/health", nil)
		if err != nil {
			return nil, stakeout.Fatal(err) // malformed request will never succeed
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}
		return resp, nil
	})

	fmt.Println("waiting for http://localhost:9999/health ...")

	start := time.Now()
	_, err := stakeout.Wait(context.Background(), probe, 10*time.Second,
		stakeout.WithInterval(250*time.Millisecond),
		stakeout.WithMessage("health endpoint never came up"),
		stakeout.WithAttemptCallback(func(a stakeout.Attempt) {
			fmt.Printf("  attempt %d: found=%v\n", a.Number, a.Found)
		}),
	)
	if err != nil {
		slog.Error("wait failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("service ready after %s\n", time.Since(start).Round(time.Millisecond))
}
