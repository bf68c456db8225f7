package engine

// historyCap bounds the per-test execution history. Oldest entries are
// evicted first when the window is full.
const historyCap = 10

// minSamples is the minimum number of recorded executions required before
// a test can be classified as flaky.
const minSamples = 3

// FlakinessTracker maintains a bounded pass/fail history per test ID and
// classifies tests as flaky from the pass/fail pattern in that window.
//
// The history lives for the lifetime of the tracker instance and is only
// evicted by count, never by time; create a new tracker for a clean slate.
// A tracker is not safe for concurrent use.
type FlakinessTracker struct {
	history map[string][]bool
}

// NewFlakinessTracker creates an empty tracker.
func NewFlakinessTracker() *FlakinessTracker {
	return &FlakinessTracker{
		history: make(map[string][]bool),
	}
}

// IsFlaky appends the new results to the test's history, trims the history
// to the most recent 10 entries, and reports whether the pass/fail pattern
// classifies the test as flaky.
//
// A test is flaky when its window holds at least 3 samples, the pass rate
// over the window is between 0.3 and 0.7 inclusive, and the window
// contains at least 2 failures. A window of all passes or all failures is
// never flaky.
func (t *FlakinessTracker) IsFlaky(testID string, results []*ExecutionResult) bool {
	for _, r := range results {
		t.history[testID] = append(t.history[testID], r.Passed)
	}
	if n := len(t.history[testID]); n > historyCap {
		t.history[testID] = t.history[testID][n-historyCap:]
	}

	window := t.history[testID]
	if len(window) < minSamples {
		return false
	}

	passes := 0
	for _, passed := range window {
		if passed {
			passes++
		}
	}
	failures := len(window) - passes

	if passes == 0 || failures == 0 {
		return false
	}

	passRate := float64(passes) / float64(len(window))
	return passRate >= 0.3 && passRate <= 0.7 && failures >= 2
}

// History returns the recorded pass/fail window for a test ID. The
// returned slice is a copy.
func (t *FlakinessTracker) History(testID string) []bool {
	return append([]bool(nil), t.history[testID]...)
}
