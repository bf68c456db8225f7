// Package agent provides the subprocess adapter used to reach the
// reasoning-oracle model CLI. It abstracts prompt execution behind a small
// interface so the oracle can be backed by a real model CLI in production
// and by a mock in tests.
package agent

import (
	"context"
	"time"
)

// Agent is the interface for invoking a reasoning model with a prompt.
type Agent interface {
	// Name returns the agent's identifier (e.g. "claude").
	Name() string

	// Run executes a prompt and returns the captured result. The context
	// is used for cancellation and timeout.
	Run(ctx context.Context, opts RunOpts) (*RunResult, error)

	// CheckPrerequisites verifies that the agent's CLI tool is installed
	// and accessible. Returns an error describing what is missing.
	CheckPrerequisites() error
}

// Config holds agent configuration from the [oracle] section of
// rigour.toml.
type Config struct {
	// Command is the CLI executable name (e.g. "claude").
	Command string `toml:"command"`

	// Model is the model identifier passed to the CLI.
	Model string `toml:"model"`

	// Effort controls the reasoning-effort level (e.g. "high", "low").
	Effort string `toml:"effort"`
}

// RunOpts specifies options for a single agent invocation.
type RunOpts struct {
	Prompt  string   `json:"prompt,omitempty"`
	Model   string   `json:"model,omitempty"`
	WorkDir string   `json:"work_dir,omitempty"`
	Env     []string `json:"env,omitempty"`
}

// RunResult captures the output of an agent invocation. Duration is
// serialized as nanoseconds (int64), the default Go behavior for
// time.Duration.
type RunResult struct {
	Stdout    string         `json:"stdout"`
	Stderr    string         `json:"stderr"`
	ExitCode  int            `json:"exit_code"`
	Duration  time.Duration  `json:"duration"`
	RateLimit *RateLimitInfo `json:"rate_limit,omitempty"`
}

// RateLimitInfo describes a detected rate-limit condition in model output.
type RateLimitInfo struct {
	IsLimited  bool          `json:"is_limited"`
	ResetAfter time.Duration `json:"reset_after"`
	Message    string        `json:"message"`
}

// Success returns true if the agent exited with code 0.
func (r *RunResult) Success() bool {
	return r.ExitCode == 0
}

// WasRateLimited returns true if the result indicates a rate-limit
// condition.
func (r *RunResult) WasRateLimited() bool {
	return r.RateLimit != nil && r.RateLimit.IsLimited
}
