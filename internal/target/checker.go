package target

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

// maxDrainSize caps how much of a response body is read before the
// connection is released back to the pool.
const maxDrainSize = 1 << 20 // 1MB

// connection pooling limits to prevent resource exhaustion when checking many targets
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second // conservative: matches common ALB defaults
)

// Checker performs readiness checks against HTTP, TCP, and file targets.
//
// Checker uses per-check timeouts via context rather than a global client
// timeout, allowing different targets to have different deadline
// configurations. A checker is safe for concurrent use and should be
// shared across all checks for connection reuse.
type Checker struct {
	httpClient *http.Client
	dialer     *net.Dialer
}

// NewChecker creates a [Checker] with pooled connections.
//
// The HTTP client is configured with connection pooling limits so that
// repeatedly probing many targets does not exhaust file descriptors:
//   - MaxIdleConns: 100 total idle connections
//   - MaxIdleConnsPerHost: 10 idle connections per host
//   - MaxConnsPerHost: 10 concurrent connections per host
//   - IdleConnTimeout: 60 seconds before closing idle connections
func NewChecker() *Checker {
	return &Checker{
		httpClient: &http.Client{
			// no default timeout - deadlines come from the probe context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
				DisableKeepAlives:   false, // explicitly enable connection reuse
			},
		},
		dialer: &net.Dialer{},
	}
}

// HTTP checks whether an HTTP endpoint responds with the wanted status.
//
// If method is empty, GET is used. If wantStatus is zero, any 2xx
// response counts as ready. The response body is drained (up to 1MB) and
// discarded so the connection can be reused.
//
// Returns nil when the endpoint is ready, an error describing why not
// otherwise.
func (c *Checker) HTTP(ctx context.Context, method, url string, headers map[string]string, wantStatus int) error {
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// drain for connection reuse; the body content is irrelevant here
	_, _ = io.CopyN(io.Discard, resp.Body, maxDrainSize)

	if wantStatus == 0 {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return nil
	}
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("status %d, want %d", resp.StatusCode, wantStatus)
	}
	return nil
}

// TCP checks whether a TCP address accepts connections.
//
// The address uses host:port form. A successful dial is closed
// immediately; the connection is only used to establish readiness.
func (c *Checker) TCP(ctx context.Context, addr string) error {
	conn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	_ = conn.Close()
	return nil
}

// File checks whether a regular file exists at path.
//
// Directories do not count as ready: waiting on a file usually means
// waiting for a marker or artifact to be written.
func (c *Checker) File(_ context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat failed: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, want a file", path)
	}
	return nil
}

// Close closes all idle connections in the checker's connection pool.
//
// This should be called when the checker is no longer needed to release
// resources immediately rather than waiting for the idle connection
// timeout. Safe to call multiple times. After Close, the checker remains
// usable but new connections will be established as needed.
func (c *Checker) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
