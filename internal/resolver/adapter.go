package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	apperrors "streamgate/internal/errors"
	"streamgate/internal/logger"
)

// Result is the outcome of one resolution
type Result struct {
	OK          bool                   `json:"ok"`
	Type        string                 `json:"type,omitempty"`
	ResolvedURL string                 `json:"resolvedUrl"`
	Headers     map[string]string      `json:"headers,omitempty"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
}

// Adapter launches an external resolver script as a subprocess and parses
// its stdout. Scripts disagree on their invocation convention, so three
// strategies are tried in order: plain argv, a --json flag, and a JSON
// payload on stdin. The first stdout parseable as JSON or a bare URL wins.
type Adapter struct {
	command string
	timeout time.Duration
	logger  *logger.Logger
}

// NewAdapter creates an adapter invoking scripts through command
func NewAdapter(command string, timeout time.Duration) *Adapter {
	return &Adapter{
		command: command,
		timeout: timeout,
		logger:  logger.AppLogger(),
	}
}

type attempt struct {
	stdout   string
	stderr   string
	exitCode int
}

// Run executes the resolver script for a URL. kind is "tv" or "video".
func (a *Adapter) Run(ctx context.Context, scriptPath, rawURL, kind string, headers map[string]string) (*Result, error) {
	if headers == nil {
		headers = map[string]string{}
	}
	payload, err := json.Marshal(map[string]interface{}{
		"url":     rawURL,
		"headers": headers,
		"kind":    kind,
	})
	if err != nil {
		return nil, apperrors.ResolverError("failed to encode resolver payload", err)
	}

	a.logger.WithFields(map[string]interface{}{
		"script": filepath.Base(scriptPath),
		"kind":   kind,
	}).Debug("invoking resolver script")

	attempts := make([]attempt, 0, 3)

	// 1) plain argv
	first := a.exec(ctx, scriptPath, nil, scriptPath, rawURL)
	attempts = append(attempts, first)
	if result := parseOutput(first.stdout); result != nil {
		return result, nil
	}

	// 2) --json flag, when the script supports it
	second := a.exec(ctx, scriptPath, nil, scriptPath, "--json", rawURL)
	attempts = append(attempts, second)
	if result := parseOutput(second.stdout); result != nil {
		return result, nil
	}

	// 3) JSON payload on stdin
	third := a.exec(ctx, scriptPath, payload, scriptPath)
	attempts = append(attempts, third)
	if result := parseOutput(third.stdout); result != nil {
		return result, nil
	}

	details := make([]string, 0, len(attempts))
	for _, att := range attempts {
		details = append(details, att.detail())
	}
	return nil, apperrors.ResolverError(
		fmt.Sprintf("no usable resolver output (%s)", strings.Join(details, " | ")), nil).
		WithContext("script", filepath.Base(scriptPath))
}

// exec runs one invocation strategy with the adapter timeout
func (a *Adapter) exec(ctx context.Context, scriptPath string, stdin []byte, args ...string) attempt {
	runCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, a.command, args...)
	cmd.Dir = filepath.Dir(scriptPath)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		exitCode = -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
	}

	return attempt{
		stdout:   stdout.String(),
		stderr:   stderr.String(),
		exitCode: exitCode,
	}
}

// detail summarizes a failed attempt: exit code plus the stderr tail
func (att attempt) detail() string {
	errText := strings.ReplaceAll(strings.TrimSpace(att.stderr), "\r", "")
	lines := strings.Split(errText, "\n")
	if len(lines) > 6 {
		lines = lines[len(lines)-6:]
	}
	tail := strings.Join(lines, "\n")
	if tail == "" {
		return fmt.Sprintf("rc=%d", att.exitCode)
	}
	return fmt.Sprintf("rc=%d; stderr_last_lines=\n%s", att.exitCode, tail)
}

// parseOutput interprets resolver stdout as a JSON object or a bare URL;
// anything else yields nil so the next strategy runs.
func parseOutput(stdout string) *Result {
	out := strings.TrimSpace(stdout)
	if out == "" {
		return nil
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(out), &payload); err == nil {
		result := &Result{OK: true, Headers: map[string]string{}, Meta: map[string]interface{}{}}
		if v, ok := payload["ok"].(bool); ok {
			result.OK = v
		}
		if v, ok := payload["resolvedUrl"].(string); ok {
			result.ResolvedURL = v
		}
		if v, ok := payload["type"].(string); ok {
			result.Type = v
		}
		if v, ok := payload["headers"].(map[string]interface{}); ok {
			for key, value := range v {
				if s, ok := value.(string); ok {
					result.Headers[key] = s
				}
			}
		}
		if v, ok := payload["meta"].(map[string]interface{}); ok {
			result.Meta = v
		}
		return result
	}

	if strings.HasPrefix(out, "http://") || strings.HasPrefix(out, "https://") {
		return &Result{OK: true, ResolvedURL: out, Headers: map[string]string{}, Meta: map[string]interface{}{}}
	}
	return nil
}
