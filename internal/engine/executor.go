package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a single test execution when no timeout is
// configured.
const DefaultTimeout = 60 * time.Second

// DefaultWorkers is the size of the worker pool used by parallel batch
// execution.
const DefaultWorkers = 4

var (
	// rePassedCount matches the runner's "N passed" stdout counter.
	rePassedCount = regexp.MustCompile(`(\d+) passed`)

	// reFailedCount matches the runner's "N failed" stdout counter.
	reFailedCount = regexp.MustCompile(`(\d+) failed`)

	// reErrorCount matches the runner's "N error" stdout counter.
	reErrorCount = regexp.MustCompile(`(\d+) error`)
)

// Executor runs generated test artifacts in isolated subprocesses.
//
// Each execution writes the plan's artifact to a uniquely named temporary
// file, invokes the configured runner command on it, and classifies the
// outcome from the exit code and the captured output. Executions never
// share state, so an Executor is safe for concurrent use.
type Executor struct {
	timeout time.Duration
	command []string
	suffix  string
	workers int
	logger  *log.Logger
}

// ExecutorOption is a functional option for configuring an Executor.
type ExecutorOption func(*Executor)

// WithTimeout sets the per-execution timeout. Zero or negative values keep
// the default.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithRunnerCommand sets the command used to run artifacts. The artifact
// path is appended as the final argument. An empty slice keeps the default.
func WithRunnerCommand(command []string) ExecutorOption {
	return func(e *Executor) {
		if len(command) > 0 {
			e.command = append([]string(nil), command...)
		}
	}
}

// WithArtifactSuffix sets the file extension for written artifacts.
func WithArtifactSuffix(suffix string) ExecutorOption {
	return func(e *Executor) {
		if suffix != "" {
			e.suffix = suffix
		}
	}
}

// WithWorkers sets the parallel batch worker-pool size. Values below 1
// keep the default.
func WithWorkers(n int) ExecutorOption {
	return func(e *Executor) {
		if n >= 1 {
			e.workers = n
		}
	}
}

// WithExecutorLogger attaches a logger. A nil logger disables logging.
func WithExecutorLogger(logger *log.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates an Executor. Defaults: 60s timeout, pytest runner
// ("python3 -m pytest -v --tb=short"), ".py" artifacts, 4 batch workers.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		timeout: DefaultTimeout,
		command: []string{"python3", "-m", "pytest", "-v", "--tb=short"},
		suffix:  ".py",
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs a single plan and blocks until it completes or times out.
// All failures are captured in the returned ExecutionResult rather than
// surfaced as errors: spawn and I/O failures yield StatusError with the
// stringified cause, a timeout yields StatusError with a message naming
// the configured timeout, and the wall-clock duration is always recorded.
func (e *Executor) Execute(ctx context.Context, plan *TestPlan) *ExecutionResult {
	start := time.Now()
	result := &ExecutionResult{
		PlanID:    plan.ID,
		Status:    StatusPassed,
		Passed:    true,
		Timestamp: start.UTC(),
		Metadata:  map[string]any{},
	}

	path, err := e.writeArtifact(plan)
	if err != nil {
		result.Status = StatusError
		result.Passed = false
		result.ErrorMessage = err.Error()
		result.Duration = time.Since(start)
		return result
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := append(append([]string(nil), e.command[1:]...), path)
	cmd := exec.CommandContext(execCtx, e.command[0], args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if e.logger != nil {
		e.logger.Debug("executing plan",
			"plan_id", plan.ID,
			"artifact", path,
			"timeout", e.timeout,
		)
	}

	runErr := cmd.Run()
	result.Duration = time.Since(start)
	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()

	switch {
	case errors.Is(execCtx.Err(), context.DeadlineExceeded):
		// The artifact file is deliberately left behind here: cleanup is
		// best-effort and happens on the completed path only.
		result.Status = StatusError
		result.Passed = false
		result.ErrorMessage = fmt.Sprintf("test timed out after %s", e.timeout)
		return result

	case runErr != nil && !isExitError(runErr):
		// Spawn or I/O failure before the process produced an exit code.
		result.Status = StatusError
		result.Passed = false
		result.ErrorMessage = runErr.Error()
		return result
	}

	exitCode := cmd.ProcessState.ExitCode()
	result.Passed = exitCode == 0
	if exitCode == 0 {
		result.Status = StatusPassed
	} else {
		result.Status = StatusFailed
	}

	e.scanOutput(result, result.Stdout)

	// Best-effort cleanup; never surfaced to the caller.
	_ = os.Remove(path)

	if e.logger != nil {
		e.logger.Info("plan executed",
			"plan_id", plan.ID,
			"status", result.Status,
			"exit_code", exitCode,
			"duration", result.Duration,
		)
	}

	return result
}

// ExecuteBatch runs all plans and returns one result per plan, with
// results[i] corresponding to plans[i] regardless of the parallel flag or
// completion order.
//
// Sequential mode finishes each plan before starting the next. Parallel
// mode fans out over a bounded worker pool; each execution is fully
// isolated (own artifact file, own process), so a failure or timeout in
// one worker only affects its own result slot.
func (e *Executor) ExecuteBatch(ctx context.Context, plans []*TestPlan, parallel bool) []*ExecutionResult {
	results := make([]*ExecutionResult, len(plans))

	if !parallel {
		for i, plan := range plans {
			results[i] = e.Execute(ctx, plan)
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, plan := range plans {
		i, plan := i, plan
		g.Go(func() error {
			// Each goroutine writes only its own slot; no locking needed.
			results[i] = e.Execute(gctx, plan)
			return nil
		})
	}

	// Workers always return nil; Execute captures every failure in its
	// result slot.
	_ = g.Wait()

	return results
}

// writeArtifact persists the plan's artifact to a uniquely named temp file
// and returns its path. The name embeds an xxhash digest of the artifact
// content so concurrent executions of distinct plans can never collide on
// identical generation timestamps.
func (e *Executor) writeArtifact(plan *TestPlan) (string, error) {
	digest := xxhash.Sum64String(plan.Artifact)
	pattern := fmt.Sprintf("rigour-%016x-*%s", digest, e.suffix)

	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("engine: creating artifact file: %w", err)
	}
	if _, err := f.WriteString(plan.Artifact); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("engine: writing artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("engine: closing artifact: %w", err)
	}
	return f.Name(), nil
}

// scanOutput extracts assertion counters and error signals from the
// runner's stdout. The counters follow the runner's textual convention
// ("N passed" / "N failed" / "N error") and are best-effort.
//
// Any error-count token or a case-insensitive "error" occurrence forces
// StatusError and Passed=false even when the exit code was zero: a
// detected error string is treated as a hard failure signal.
func (e *Executor) scanOutput(result *ExecutionResult, output string) {
	if m := rePassedCount.FindStringSubmatch(output); len(m) == 2 {
		result.AssertionsPassed, _ = strconv.Atoi(m[1])
	}
	if m := reFailedCount.FindStringSubmatch(output); len(m) == 2 {
		result.AssertionsFailed, _ = strconv.Atoi(m[1])
	}

	if reErrorCount.MatchString(output) || strings.Contains(strings.ToLower(output), "error") {
		result.Status = StatusError
		result.Passed = false
	}

	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "FAILED") || strings.Contains(line, "ERROR") {
			result.ErrorMessage = strings.TrimSpace(line)
			break
		}
	}

	// Generated tests emit structured response data as a final
	// "RESPONSE_DATA: {json}" line; the last occurrence wins.
	for _, line := range strings.Split(output, "\n") {
		rest, found := strings.CutPrefix(strings.TrimSpace(line), "RESPONSE_DATA:")
		if !found {
			continue
		}
		var data map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(rest)), &data); err == nil {
			result.ResponseData = data
		}
	}
}

// isExitError reports whether err carries a process exit code.
func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
