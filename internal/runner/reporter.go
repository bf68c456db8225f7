package runner

import (
	"github.com/rigour-dev/rigour/internal/engine"
	"github.com/rigour-dev/rigour/internal/scene"
)

// Reporter receives progress callbacks as the pipeline advances. The
// console implementation lives in the report package; the runner only
// depends on this interface.
//
// Callbacks are invoked from the sequential scene loop, never
// concurrently.
type Reporter interface {
	// RunStarted is called once before the first scene.
	RunStarted(total int)

	// SceneStarted is called before a scene enters the pipeline. index is
	// zero-based.
	SceneStarted(sc *scene.Scene, index, total int)

	// ExecutionFinished is called after the primary and healed executions.
	ExecutionFinished(plan *engine.TestPlan, result *engine.ExecutionResult)

	// EdgeBatchFinished is called after an edge-case batch completes, with
	// results in plan order.
	EdgeBatchFinished(plans []*engine.TestPlan, results []*engine.ExecutionResult)

	// SceneFinished is called with the scene's aggregated result.
	SceneFinished(sr *SceneResult)

	// RunFinished is called once after the last scene, including when the
	// run aborted early.
	RunFinished(rr *RunResult, sum Summary)
}

// NopReporter discards all callbacks.
type NopReporter struct{}

func (NopReporter) RunStarted(int)                                              {}
func (NopReporter) SceneStarted(*scene.Scene, int, int)                         {}
func (NopReporter) ExecutionFinished(*engine.TestPlan, *engine.ExecutionResult) {}
func (NopReporter) EdgeBatchFinished([]*engine.TestPlan, []*engine.ExecutionResult) {
}
func (NopReporter) SceneFinished(*SceneResult)      {}
func (NopReporter) RunFinished(*RunResult, Summary) {}
