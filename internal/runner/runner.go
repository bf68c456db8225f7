package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rigour-dev/rigour/internal/config"
	"github.com/rigour-dev/rigour/internal/engine"
	"github.com/rigour-dev/rigour/internal/oracle"
	"github.com/rigour-dev/rigour/internal/scene"
	"github.com/rigour-dev/rigour/internal/target"
)

// Runner drives scenes through the pipeline. Construct one per run with
// NewRunner; a Runner is not safe for concurrent use.
type Runner struct {
	oracle   oracle.Oracle
	executor *engine.Executor
	conn     *target.Connection
	pipeline config.PipelineConfig
	reporter Reporter
	logger   *log.Logger

	// plans indexes every generated plan by ID for later lookup. Written
	// only from the sequential scene loop, so a plain map suffices.
	plans map[string]*engine.TestPlan
}

// Option is a functional option for configuring a Runner.
type Option func(*Runner)

// WithConnection sets the target connection passed to plan generation.
func WithConnection(conn *target.Connection) Option {
	return func(r *Runner) {
		if conn != nil {
			r.conn = conn
		}
	}
}

// WithPipeline sets the pipeline stage configuration.
func WithPipeline(p config.PipelineConfig) Option {
	return func(r *Runner) {
		r.pipeline = p
	}
}

// WithReporter attaches a progress reporter.
func WithReporter(rep Reporter) Option {
	return func(r *Runner) {
		if rep != nil {
			r.reporter = rep
		}
	}
}

// WithLogger attaches a logger. A nil logger disables logging.
func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner over the given oracle and executor. Defaults:
// local target connection, full pipeline with the standard edge-case cap,
// no reporting.
func NewRunner(o oracle.Oracle, e *engine.Executor, opts ...Option) *Runner {
	r := &Runner{
		oracle:   o,
		executor: e,
		conn:     target.Default(),
		pipeline: config.NewDefaults().Pipeline,
		reporter: NopReporter{},
		plans:    make(map[string]*engine.TestPlan),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plan returns a previously generated plan by ID.
func (r *Runner) Plan(id string) (*engine.TestPlan, bool) {
	p, ok := r.plans[id]
	return p, ok
}

// Run drives all scenes through the pipeline sequentially and aggregates
// their results. A judgment failure aborts the run; the returned RunResult
// still carries everything completed up to that point.
func (r *Runner) Run(ctx context.Context, scenes []*scene.Scene) (*RunResult, error) {
	rr := &RunResult{StartedAt: time.Now().UTC()}

	r.reporter.RunStarted(len(scenes))

	var runErr error
	for i, sc := range scenes {
		r.reporter.SceneStarted(sc, i, len(scenes))

		sr, err := r.RunScene(ctx, sc)
		if sr != nil {
			rr.Scenes = append(rr.Scenes, sr)
			r.reporter.SceneFinished(sr)
		}
		if err != nil {
			runErr = fmt.Errorf("runner: scene %s: %w", sc.ID, err)
			break
		}
	}

	rr.FinishedAt = time.Now().UTC()
	r.reporter.RunFinished(rr, Summarize(rr))
	return rr, runErr
}

// RunScene drives a single scene through the pipeline: plan, execute,
// explore edge cases on success, heal on failure, then judge. The returned
// SceneResult is populated as far as the pipeline got; only a judgment
// failure is returned as an error.
func (r *Runner) RunScene(ctx context.Context, sc *scene.Scene) (*SceneResult, error) {
	start := time.Now()
	sr := &SceneResult{Scene: sc}

	plan := r.oracle.Plan(ctx, sc, r.conn)
	r.plans[plan.ID] = plan
	sr.Plan = plan

	r.info("executing scene", "scene_id", sc.ID, "plan_id", plan.ID, "title", sc.Title)

	sr.Primary = r.executor.Execute(ctx, plan)
	sr.Passed = sr.Primary.Passed
	r.reporter.ExecutionFinished(plan, sr.Primary)

	if sr.Primary.Passed {
		r.explore(ctx, sc, sr)
	} else {
		r.heal(ctx, sc, sr)
	}

	if err := r.judge(ctx, sc, sr); err != nil {
		sr.Duration = time.Since(start)
		return sr, err
	}

	sr.Duration = time.Since(start)
	return sr, nil
}

// explore runs the edge-case stage: only reached when the primary
// execution passed and the stage is enabled. The configured cap is the
// single bound on how many variations are generated and run.
func (r *Runner) explore(ctx context.Context, sc *scene.Scene, sr *SceneResult) {
	if r.pipeline.DisableExploration || r.pipeline.MaxEdgeCases <= 0 {
		return
	}

	suggestions := r.oracle.SuggestEdgeCases(ctx, sc, r.pipeline.MaxEdgeCases)
	if len(suggestions) == 0 {
		return
	}
	sr.Suggestions = suggestions

	plans := make([]*engine.TestPlan, 0, len(suggestions))
	for _, s := range suggestions {
		variant := edgeScene(sc, s)
		plan := r.oracle.Plan(ctx, variant, r.conn)
		r.plans[plan.ID] = plan
		plans = append(plans, plan)
	}

	results := r.executor.ExecuteBatch(ctx, plans, !r.pipeline.SequentialEdgeCases)
	sr.EdgePlans = plans
	sr.EdgeResults = results
	r.reporter.EdgeBatchFinished(plans, results)

	passed := 0
	for _, res := range results {
		if res.Passed {
			passed++
		}
	}
	r.info("edge cases explored", "scene_id", sc.ID, "explored", len(results), "passed", passed)
}

// heal runs the self-healing stage: only reached when the primary
// execution failed and the stage is enabled. A passing healed execution
// flips the scene's verdict; the failed primary result is retained either
// way.
func (r *Runner) heal(ctx context.Context, sc *scene.Scene, sr *SceneResult) {
	if r.pipeline.DisableHealing {
		return
	}

	sr.Diagnosis = r.oracle.Diagnose(ctx, sr.Plan, sr.Primary)
	r.info("failure diagnosed",
		"scene_id", sc.ID,
		"root_cause", sr.Diagnosis.RootCause,
		"failure_type", sr.Diagnosis.FailureType,
	)

	healed, err := r.oracle.Heal(ctx, sr.Plan, sr.Diagnosis)
	if err != nil {
		r.warn("healing skipped", "scene_id", sc.ID, "err", err)
		return
	}
	r.plans[healed.ID] = healed
	sr.HealedPlan = healed

	sr.Healed = r.executor.Execute(ctx, healed)
	r.reporter.ExecutionFinished(healed, sr.Healed)

	if sr.Healed.Passed {
		sr.Passed = true
		r.info("scene healed", "scene_id", sc.ID, "plan_id", healed.ID)
	}
}

// judge runs the quality-judgment stage on the primary execution, even
// when healing ran afterwards. A primary without response data is marked
// with an explicit nil quality score, which records that judgment ran
// but had nothing to score. Judgment errors abort the scene.
func (r *Runner) judge(ctx context.Context, sc *scene.Scene, sr *SceneResult) error {
	if r.pipeline.DisableJudgment {
		return nil
	}

	primary := sr.Primary
	if primary == nil {
		return nil
	}
	if primary.Metadata == nil {
		primary.Metadata = map[string]any{}
	}

	if primary.ResponseData == nil {
		primary.Metadata["quality_score"] = nil
		return nil
	}

	verdict, err := r.oracle.Judge(ctx, sc, primary.ResponseData)
	if err != nil {
		return fmt.Errorf("judging response quality: %w", err)
	}
	sr.Judgment = verdict
	primary.Metadata["quality_score"] = verdict.Score

	r.info("quality judged", "scene_id", sc.ID, "score", verdict.Score, "passed", verdict.Passed)
	return nil
}

// edgeScene derives a scene variant for one edge-case suggestion. The
// variant keeps the parent's actor, steps, assertions, and priority, and
// carries the suggestion's intent in its description, leaving concrete
// input mutation to plan generation.
func edgeScene(parent *scene.Scene, s oracle.EdgeCaseSuggestion) *scene.Scene {
	title := parent.Title + " [edge: " + s.Name + "]"
	desc := s.Description
	if s.ExpectedBehavior != "" {
		desc += " Expected behavior: " + s.ExpectedBehavior
	}

	suggPriority := s.Priority
	if suggPriority == "" {
		suggPriority = "medium"
	}

	variant := scene.New(title, desc)
	variant.Actor = parent.Actor
	variant.Priority = parent.Priority
	variant.Steps = append([]scene.Step(nil), parent.Steps...)
	variant.Assertions = append([]scene.Assertion(nil), parent.Assertions...)
	variant.Tags = append(append([]string(nil), parent.Tags...),
		"edge-case", "priority-"+suggPriority)
	variant.Metadata["original_scene_id"] = parent.ID
	variant.Metadata["edge_case_type"] = s.Name
	if s.Strategy != "" {
		variant.Metadata["strategy"] = s.Strategy
	}
	return variant
}

func (r *Runner) info(msg string, keyvals ...any) {
	if r.logger != nil {
		r.logger.Info(msg, keyvals...)
	}
}

func (r *Runner) warn(msg string, keyvals ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, keyvals...)
	}
}
