package agent

import (
	"context"
	"sync"
)

// Compile-time check that MockAgent implements Agent.
var _ Agent = (*MockAgent)(nil)

// MockAgent is a test double for the Agent interface. It records every
// invocation and delegates behavior to RunFunc when set, otherwise it
// returns a canned successful result.
type MockAgent struct {
	mu sync.Mutex

	// AgentName overrides the name reported by Name. Defaults to "mock".
	AgentName string

	// RunFunc, when set, handles Run calls.
	RunFunc func(ctx context.Context, opts RunOpts) (*RunResult, error)

	// PrereqErr is returned from CheckPrerequisites.
	PrereqErr error

	// Calls records the options of every Run invocation, in order.
	Calls []RunOpts
}

// Name returns the mock's configured name.
func (m *MockAgent) Name() string {
	if m.AgentName != "" {
		return m.AgentName
	}
	return "mock"
}

// Run records the invocation and delegates to RunFunc when set.
func (m *MockAgent) Run(ctx context.Context, opts RunOpts) (*RunResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, opts)
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, opts)
	}
	return &RunResult{Stdout: "", ExitCode: 0}, nil
}

// CheckPrerequisites returns the configured PrereqErr.
func (m *MockAgent) CheckPrerequisites() error {
	return m.PrereqErr
}

// CallCount returns the number of Run invocations recorded so far.
func (m *MockAgent) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the options of the most recent Run invocation, or a
// zero RunOpts when no call has been made.
func (m *MockAgent) LastCall() RunOpts {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return RunOpts{}
	}
	return m.Calls[len(m.Calls)-1]
}

// RespondWith returns a MockAgent whose Run always succeeds with the
// given stdout. Convenient for oracle tests that only care about the
// model's textual reply.
func RespondWith(stdout string) *MockAgent {
	return &MockAgent{
		RunFunc: func(ctx context.Context, opts RunOpts) (*RunResult, error) {
			return &RunResult{Stdout: stdout, ExitCode: 0}, nil
		},
	}
}
