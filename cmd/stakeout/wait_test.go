package main

import (
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes a temp config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "targets.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// executeWaitCmd runs the wait command against the given config path.
func executeWaitCmd(t *testing.T, configPath string) error {
	t.Helper()

	rootCmd.SetArgs([]string{"wait", "-c", configPath})
	return rootCmd.Execute()
}

func TestRunWait_AllReady(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	markerPath := filepath.Join(t.TempDir(), "ready")
	if err := os.WriteFile(markerPath, []byte("done"), 0644); err != nil {
		t.Fatalf("failed to write marker file: %v", err)
	}

	configPath := writeConfig(t, `
timeout: 5s
interval: 20ms
targets:
  - name: API
    http: `+server.URL+`
    status: 200
  - name: Marker
    file: `+markerPath+`
`)

	if err := executeWaitCmd(t, configPath); err != nil {
		t.Errorf("wait command error = %v, want nil when all targets are ready", err)
	}
}

func TestRunWait_TargetTimesOut(t *testing.T) {
	// reserve a port, then close the listener so nothing is there
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()

	configPath := writeConfig(t, `
timeout: 200ms
interval: 20ms
targets:
  - name: Ghost
    tcp: `+addr+`
`)

	err = executeWaitCmd(t, configPath)
	if err == nil {
		t.Fatal("wait command expected error when a target never becomes ready, got nil")
	}
	if !strings.Contains(err.Error(), "not all targets became ready") {
		t.Errorf("error = %v, want the summary failure message", err)
	}
}

func TestRunWait_InvalidConfig(t *testing.T) {
	configPath := writeConfig(t, `
targets:
  - name: API
`)

	err := executeWaitCmd(t, configPath)
	if err == nil {
		t.Fatal("wait command expected error for invalid config, got nil")
	}
	if !strings.Contains(err.Error(), "failed to load config") {
		t.Errorf("error = %v, want a config load error", err)
	}
}
