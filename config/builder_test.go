package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/stakeout/internal/target"
)

func TestBuildChecks_ResolvesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
timeout: 45s
interval: 200ms
targets:
  - name: Global
    tcp: localhost:5432
  - name: Override
    tcp: localhost:6379
    timeout: 10s
    interval: 50ms
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	checker := target.NewChecker()
	defer checker.Close()

	checks, err := BuildChecks(cfg, checker)
	if err != nil {
		t.Fatalf("BuildChecks() error = %v", err)
	}
	if len(checks) != 2 {
		t.Fatalf("len(checks) = %d, want 2", len(checks))
	}

	global := checks[0]
	if global.Timeout != 45*time.Second {
		t.Errorf("checks[0].Timeout = %v, want global 45s", global.Timeout)
	}
	if global.Interval != 200*time.Millisecond {
		t.Errorf("checks[0].Interval = %v, want global 200ms", global.Interval)
	}

	override := checks[1]
	if override.Timeout != 10*time.Second {
		t.Errorf("checks[1].Timeout = %v, want override 10s", override.Timeout)
	}
	if override.Interval != 50*time.Millisecond {
		t.Errorf("checks[1].Interval = %v, want override 50ms", override.Interval)
	}
}

func TestBuildChecks_Messages(t *testing.T) {
	cfg, err := Parse([]byte(`
timeout: 30s
targets:
  - name: Postgres
    tcp: localhost:5432
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	checker := target.NewChecker()
	defer checker.Close()

	checks, err := BuildChecks(cfg, checker)
	if err != nil {
		t.Fatalf("BuildChecks() error = %v", err)
	}

	msg := checks[0].Message
	for _, want := range []string{"Postgres", "tcp", "localhost:5432", "30s"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Message = %q, want it to contain %q", msg, want)
		}
	}
}

func TestBuildChecks_HTTPProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Probe") != "stakeout" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg, err := Parse([]byte(`
targets:
  - name: API
    http: ` + server.URL + `
    status: 200
    headers:
      X-Probe: stakeout
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	checker := target.NewChecker()
	defer checker.Close()

	checks, err := BuildChecks(cfg, checker)
	if err != nil {
		t.Fatalf("BuildChecks() error = %v", err)
	}

	_, found, probeErr := checks[0].Probe(context.Background())
	if probeErr != nil {
		t.Fatalf("Probe() error = %v", probeErr)
	}
	if !found {
		t.Error("Probe() found = false, want true for healthy endpoint")
	}
}

func TestBuildChecks_FileProbe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ready")

	cfg, err := Parse([]byte(`
targets:
  - name: Marker
    file: ` + path + `
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	checker := target.NewChecker()
	defer checker.Close()

	checks, err := BuildChecks(cfg, checker)
	if err != nil {
		t.Fatalf("BuildChecks() error = %v", err)
	}
	probe := checks[0].Probe

	// not ready while the file is missing
	_, found, probeErr := probe(context.Background())
	if found {
		t.Error("Probe() found = true before the file exists")
	}
	if probeErr == nil {
		t.Error("Probe() error = nil, want a diagnostic stat error")
	}

	if err := os.WriteFile(path, []byte("done"), 0644); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}

	_, found, probeErr = probe(context.Background())
	if probeErr != nil {
		t.Fatalf("Probe() error = %v", probeErr)
	}
	if !found {
		t.Error("Probe() found = false, want true once the file exists")
	}
}
