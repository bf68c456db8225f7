package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Compile-time check that CLIAgent implements Agent.
var _ Agent = (*CLIAgent)(nil)

// cliLogger is the minimal logging interface required by CLIAgent.
type cliLogger interface {
	Debug(msg interface{}, keyvals ...interface{})
}

// maxInlinePromptBytes is the threshold above which a prompt is written to
// a temp file instead of being passed directly on the command line.
const maxInlinePromptBytes = 100 * 1024 // 100 KiB

var (
	// reRateLimit matches common rate-limit phrases in model CLI output.
	reRateLimit = regexp.MustCompile(`(?i)(?:rate limit|too many requests|rate.?limited)`)

	// reResetTime matches "reset in N seconds/minutes/hours" patterns.
	reResetTime = regexp.MustCompile(`(?i)reset\s+(?:in\s+)?(\d+)\s*(seconds?|minutes?|hours?)`)

	// reTryAgain matches "try again in N seconds/minutes/hours" patterns.
	reTryAgain = regexp.MustCompile(`(?i)try\s+again\s+in\s+(\d+)\s*(seconds?|minutes?|hours?)`)
)

// CLIAgent is an Agent adapter that executes prompts via a model CLI such
// as the claude command-line tool. It handles argument construction,
// subprocess execution, output capture, and rate-limit detection.
type CLIAgent struct {
	config Config
	logger cliLogger
}

// NewCLIAgent creates a CLIAgent with the given configuration and logger.
// The logger may be nil, in which case debug messages are silently
// discarded.
func NewCLIAgent(config Config, logger cliLogger) *CLIAgent {
	return &CLIAgent{
		config: config,
		logger: logger,
	}
}

// Name returns the configured command name, defaulting to "claude".
func (c *CLIAgent) Name() string {
	if c.config.Command != "" {
		return c.config.Command
	}
	return "claude"
}

// CheckPrerequisites verifies that the model CLI executable can be found
// on the system PATH.
func (c *CLIAgent) CheckPrerequisites() error {
	if _, err := exec.LookPath(c.Name()); err != nil {
		return fmt.Errorf("agent: model CLI not found (looked for %q): %w", c.Name(), err)
	}
	return nil
}

// Run executes the given prompt using the model CLI and returns the
// captured output, exit code, and duration. The ctx parameter is used for
// cancellation and timeout propagation.
//
// If the output contains a rate-limit signal, the returned RunResult has
// its RateLimit field populated.
func (c *CLIAgent) Run(ctx context.Context, opts RunOpts) (*RunResult, error) {
	start := time.Now()

	cmd, cleanup := c.buildCommand(ctx, opts)
	defer cleanup()

	if c.logger != nil {
		c.logger.Debug("running model CLI",
			"command", cmd.Path,
			"args", cmd.Args,
			"work_dir", cmd.Dir,
		)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	runErr := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("agent: running %s: %w", c.Name(), runErr)
		}
	}

	combined := stdoutBuf.String() + stderrBuf.String()
	rateLimit, _ := c.ParseRateLimit(combined)

	return &RunResult{
		Stdout:    stdoutBuf.String(),
		Stderr:    stderrBuf.String(),
		ExitCode:  exitCode,
		Duration:  duration,
		RateLimit: rateLimit,
	}, nil
}

// ParseRateLimit examines model output for rate-limit signals. It returns
// a populated *RateLimitInfo and true when a rate-limit phrase is
// detected; otherwise nil and false.
func (c *CLIAgent) ParseRateLimit(output string) (*RateLimitInfo, bool) {
	if !reRateLimit.MatchString(output) {
		return nil, false
	}

	var resetAfter time.Duration
	if m := reResetTime.FindStringSubmatch(output); len(m) == 3 {
		resetAfter = parseResetDuration(m[1], m[2])
	} else if m := reTryAgain.FindStringSubmatch(output); len(m) == 3 {
		resetAfter = parseResetDuration(m[1], m[2])
	}

	return &RateLimitInfo{
		IsLimited:  true,
		ResetAfter: resetAfter,
		Message:    output,
	}, true
}

// buildCommand constructs the *exec.Cmd for the given RunOpts. Prompts
// longer than maxInlinePromptBytes are written to a temp file; the
// returned cleanup removes that file and is a no-op otherwise.
func (c *CLIAgent) buildCommand(ctx context.Context, opts RunOpts) (*exec.Cmd, func()) {
	var args []string
	cleanup := func() {}

	args = append(args, "--print")

	model := opts.Model
	if model == "" {
		model = c.config.Model
	}
	if model != "" {
		args = append(args, "--model", model)
	}

	switch {
	case len(opts.Prompt) > maxInlinePromptBytes:
		f, err := os.CreateTemp("", "rigour-prompt-*.md")
		if err == nil {
			if _, werr := f.WriteString(opts.Prompt); werr == nil {
				_ = f.Close()
				name := f.Name()
				args = append(args, "--prompt-file", name)
				cleanup = func() { _ = os.Remove(name) }
				break
			}
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
		// Fall back to inline when the temp file could not be written.
		args = append(args, "--prompt", opts.Prompt)

	case opts.Prompt != "":
		args = append(args, "--prompt", opts.Prompt)
	}

	cmd := exec.CommandContext(ctx, c.Name(), args...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}

	env := os.Environ()
	if c.config.Effort != "" {
		env = append(env, "CLAUDE_CODE_EFFORT_LEVEL="+c.config.Effort)
	}
	env = append(env, opts.Env...)
	cmd.Env = env

	return cmd, cleanup
}

// parseResetDuration converts a numeric string and a time unit word into a
// time.Duration. Unrecognised units return 0.
func parseResetDuration(amount, unit string) time.Duration {
	n, err := strconv.Atoi(amount)
	if err != nil || n <= 0 {
		return 0
	}

	unit = strings.ToLower(unit)
	switch {
	case strings.HasPrefix(unit, "second"):
		return time.Duration(n) * time.Second
	case strings.HasPrefix(unit, "minute"):
		return time.Duration(n) * time.Minute
	case strings.HasPrefix(unit, "hour"):
		return time.Duration(n) * time.Hour
	default:
		return 0
	}
}
