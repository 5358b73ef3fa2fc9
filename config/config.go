// Package config provides YAML configuration parsing for the stakeout CLI.
//
// This package enables running stakeout as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	timeout: 2m
//	interval: 500ms
//	max_concurrency: 4
//
//	targets:
//	  - name: Postgres
//	    tcp: db.internal:5432
//	    timeout: 90s
//	  - name: API
//	    http: https://api.internal/health
//	    status: 200
//	    headers:
//	      Authorization: Bearer ${API_TOKEN}
//	  - name: Init marker
//	    file: /var/run/app/ready
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// minInterval is the minimum allowed polling interval. This prevents
// accidental DoS of targets with overly aggressive polling.
const minInterval = 10 * time.Millisecond

// defaults applied by Parse when fields are omitted
const (
	defaultTimeout        = 60 * time.Second
	defaultInterval       = 500 * time.Millisecond
	defaultMaxConcurrency = 4
)

// Config is the root configuration structure for the stakeout CLI.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Timeout is the default deadline for each target's wait.
	// Accepts duration strings like "30s", "2m", "500ms". Defaults to 60s.
	Timeout Duration `yaml:"timeout"`

	// Interval is the default delay between probe attempts.
	// Defaults to 500ms. Must be at least 10ms.
	Interval Duration `yaml:"interval"`

	// MaxConcurrency is the maximum number of targets waited on
	// simultaneously. Defaults to 4.
	MaxConcurrency int `yaml:"max_concurrency"`

	// Targets defines the readiness targets to wait for.
	Targets []TargetConfig `yaml:"targets"`
}

// TargetConfig defines a single readiness target.
//
// Exactly one of HTTP, TCP, or File must be set.
type TargetConfig struct {
	// Name is the display name used in progress output and errors.
	Name string `yaml:"name"`

	// HTTP is an endpoint URL to poll until it responds with the
	// expected status. Supports environment variable substitution:
	// ${VAR} or ${VAR:-default}.
	HTTP string `yaml:"http"`

	// TCP is a host:port address to poll until it accepts connections.
	// Supports environment variable substitution.
	TCP string `yaml:"tcp"`

	// File is a filesystem path to poll until a regular file exists.
	// Supports environment variable substitution.
	File string `yaml:"file"`

	// Method is the HTTP method (GET, HEAD, POST). Defaults to GET.
	// Only valid with HTTP targets.
	Method string `yaml:"method"`

	// Status is the expected HTTP status code. Zero means any 2xx.
	// Only valid with HTTP targets.
	Status int `yaml:"status"`

	// Headers are custom HTTP headers sent with each request.
	// Values support environment variable substitution.
	// Only valid with HTTP targets.
	Headers map[string]string `yaml:"headers"`

	// Timeout is the deadline for this target's wait.
	// If not specified, uses the global timeout.
	Timeout Duration `yaml:"timeout"`

	// Interval is the delay between attempts for this target.
	// If not specified, uses the global interval.
	Interval Duration `yaml:"interval"`
}

// Kind returns which kind of target this is: "http", "tcp", or "file".
// Returns empty string if none is set.
func (tc TargetConfig) Kind() string {
	switch {
	case tc.HTTP != "":
		return "http"
	case tc.TCP != "":
		return "tcp"
	case tc.File != "":
		return "file"
	default:
		return ""
	}
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in target URLs, addresses, paths,
// and header values. Defaults are applied for Timeout (60s), Interval
// (500ms), and MaxConcurrency (4).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = Duration(defaultTimeout)
	}
	if cfg.Interval == 0 {
		cfg.Interval = Duration(defaultInterval)
	}
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Timeout.Duration() <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout.Duration())
	}
	if c.Interval.Duration() < minInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minInterval, c.Interval.Duration())
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be positive, got %d", c.MaxConcurrency)
	}
	if len(c.Targets) == 0 {
		return fmt.Errorf("at least one target is required")
	}

	seen := make(map[string]bool, len(c.Targets))
	for i := range c.Targets {
		tc := &c.Targets[i]

		if tc.Name == "" {
			return fmt.Errorf("targets[%d]: name is required", i)
		}
		if seen[tc.Name] {
			return fmt.Errorf("targets[%d]: duplicate target name %q", i, tc.Name)
		}
		seen[tc.Name] = true

		if err := tc.expandAndValidate(); err != nil {
			return fmt.Errorf("targets[%d] (%s): %w", i, tc.Name, err)
		}
	}

	return nil
}

// expandAndValidate expands environment variables and validates one target.
func (tc *TargetConfig) expandAndValidate() error {
	set := 0
	for _, v := range []string{tc.HTTP, tc.TCP, tc.File} {
		if v != "" {
			set++
		}
	}
	if set == 0 {
		return fmt.Errorf("one of http, tcp, or file is required")
	}
	if set > 1 {
		return fmt.Errorf("http, tcp, and file are mutually exclusive")
	}

	switch tc.Kind() {
	case "http":
		expanded, err := expandEnvVars(tc.HTTP)
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
		tc.HTTP = expanded

		parsedURL, err := url.Parse(tc.HTTP)
		if err != nil {
			return fmt.Errorf("invalid url: %w", err)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("url scheme must be http or https, got %q", parsedURL.Scheme)
		}

		for k, v := range tc.Headers {
			expanded, err := expandEnvVars(v)
			if err != nil {
				return fmt.Errorf("headers[%s]: %w", k, err)
			}
			tc.Headers[k] = expanded
		}

		if tc.Method != "" && tc.Method != "GET" && tc.Method != "HEAD" && tc.Method != "POST" {
			return fmt.Errorf("method must be GET, HEAD, or POST")
		}
		if tc.Status != 0 && (tc.Status < 100 || tc.Status > 599) {
			return fmt.Errorf("status must be between 100 and 599, got %d", tc.Status)
		}

	case "tcp":
		expanded, err := expandEnvVars(tc.TCP)
		if err != nil {
			return fmt.Errorf("tcp: %w", err)
		}
		tc.TCP = expanded

		if tc.Method != "" || tc.Status != 0 || len(tc.Headers) > 0 {
			return fmt.Errorf("method, status, and headers are only valid for http targets")
		}

	case "file":
		expanded, err := expandEnvVars(tc.File)
		if err != nil {
			return fmt.Errorf("file: %w", err)
		}
		tc.File = expanded

		if tc.Method != "" || tc.Status != 0 || len(tc.Headers) > 0 {
			return fmt.Errorf("method, status, and headers are only valid for http targets")
		}
	}

	if tc.Timeout != 0 && tc.Timeout.Duration() <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", tc.Timeout.Duration())
	}
	if tc.Interval != 0 && tc.Interval.Duration() < minInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minInterval, tc.Interval.Duration())
	}

	return nil
}
