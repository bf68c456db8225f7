// Package report renders pipeline progress and results to the console and
// persists the last run's summary for the report command.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rigour-dev/rigour/internal/engine"
	"github.com/rigour-dev/rigour/internal/runner"
	"github.com/rigour-dev/rigour/internal/scene"
)

var (
	styleHeader  = lipgloss.NewStyle().Bold(true)
	stylePass    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleFail    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // dark gray
	styleHealed  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // bright blue
	styleSection = lipgloss.NewStyle().Bold(true)
)

// Compile-time check that ConsoleReporter implements runner.Reporter.
var _ runner.Reporter = (*ConsoleReporter)(nil)

// ConsoleReporter renders pipeline progress as styled lines. When
// --no-color is active, lipgloss strips ANSI because the global color
// profile was set to Ascii in the CLI root.
type ConsoleReporter struct {
	w io.Writer
}

// NewConsoleReporter creates a reporter writing to w.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

// RunStarted prints the run header.
func (c *ConsoleReporter) RunStarted(total int) {
	fmt.Fprintln(c.w, styleHeader.Render(fmt.Sprintf("Running %d scene(s)", total)))
	fmt.Fprintln(c.w, styleMuted.Render(strings.Repeat("-", 50)))
}

// SceneStarted prints the scene banner.
func (c *ConsoleReporter) SceneStarted(sc *scene.Scene, index, total int) {
	fmt.Fprintf(c.w, "\n%s %s\n",
		styleSection.Render(fmt.Sprintf("[%d/%d]", index+1, total)),
		sc.Title,
	)
}

// ExecutionFinished prints one execution's verdict line.
func (c *ConsoleReporter) ExecutionFinished(plan *engine.TestPlan, result *engine.ExecutionResult) {
	label := verdictLabel(result)
	line := fmt.Sprintf("  %s %s (%s)", label, plan.Title, result.Duration.Round(10*time.Millisecond))
	fmt.Fprintln(c.w, line)
	if !result.Passed && result.ErrorMessage != "" {
		fmt.Fprintln(c.w, styleMuted.Render("      "+result.ErrorMessage))
	}
}

// EdgeBatchFinished prints a summary line per explored edge case.
func (c *ConsoleReporter) EdgeBatchFinished(plans []*engine.TestPlan, results []*engine.ExecutionResult) {
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	fmt.Fprintf(c.w, "  %s %d/%d edge case(s) passed\n",
		styleSection.Render("edges:"), passed, len(results))
	for i, r := range results {
		fmt.Fprintf(c.w, "    %s %s\n", verdictLabel(r), plans[i].Title)
	}
}

// SceneFinished prints the scene's aggregated verdict.
func (c *ConsoleReporter) SceneFinished(sr *runner.SceneResult) {
	switch {
	case sr.Passed && sr.Healed != nil && !sr.Primary.Passed:
		fmt.Fprintf(c.w, "  %s scene passed after healing\n", styleHealed.Render("HEALED"))
	case sr.Passed:
		fmt.Fprintf(c.w, "  %s scene passed\n", stylePass.Render("PASS"))
	default:
		fmt.Fprintf(c.w, "  %s scene failed\n", styleFail.Render("FAIL"))
	}
	if sr.Judgment != nil {
		fmt.Fprintf(c.w, "  %s quality score %.2f\n",
			styleSection.Render("judge:"), sr.Judgment.Score)
	}
}

// RunFinished prints the final summary block.
func (c *ConsoleReporter) RunFinished(rr *runner.RunResult, sum runner.Summary) {
	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, styleMuted.Render(strings.Repeat("-", 50)))
	fmt.Fprintln(c.w, styleHeader.Render("Summary"))

	verdict := stylePass.Render("PASSED")
	if sum.FailedScenes > 0 {
		verdict = styleFail.Render("FAILED")
	}
	fmt.Fprintf(c.w, "  %s  %d/%d scenes passed (%.0f%%)\n",
		verdict, sum.PassedScenes, sum.TotalScenes, sum.PassRate*100)

	if sum.HealedScenes > 0 {
		fmt.Fprintf(c.w, "  %s\n",
			styleHealed.Render(fmt.Sprintf("%d scene(s) healed", sum.HealedScenes)))
	}
	if sum.EdgeCasesExplored > 0 {
		fmt.Fprintf(c.w, "  %d/%d edge case(s) passed\n",
			sum.EdgeCasesPassed, sum.EdgeCasesExplored)
	}
	if sum.AvgQualityScore != nil {
		fmt.Fprintf(c.w, "  average quality score %.2f\n", *sum.AvgQualityScore)
	}
	fmt.Fprintf(c.w, "  %d execution(s) in %s\n",
		sum.TotalExecutions, sum.Duration.Round(10*time.Millisecond))
}

// RenderStored prints a persisted report in the same visual style as a
// live run summary.
func RenderStored(w io.Writer, stored *StoredReport) {
	fmt.Fprintln(w, styleHeader.Render(fmt.Sprintf("Last run (%s)",
		stored.GeneratedAt.Format(time.RFC3339))))
	fmt.Fprintln(w, styleMuted.Render(strings.Repeat("-", 50)))

	for _, v := range stored.Scenes {
		label := stylePass.Render("PASS")
		switch {
		case v.Healed:
			label = styleHealed.Render("HEALED")
		case !v.Passed:
			label = styleFail.Render("FAIL")
		}
		fmt.Fprintf(w, "  %s %s\n", label, v.Title)
		if v.ErrorMessage != "" {
			fmt.Fprintln(w, styleMuted.Render("      "+v.ErrorMessage))
		}
		if v.EdgeExplored > 0 {
			fmt.Fprintf(w, "      %d/%d edge case(s) passed\n", v.EdgePassed, v.EdgeExplored)
		}
		if v.QualityScore != nil {
			fmt.Fprintf(w, "      quality score %.2f\n", *v.QualityScore)
		}
	}

	sum := stored.Summary
	fmt.Fprintln(w, styleMuted.Render(strings.Repeat("-", 50)))
	fmt.Fprintf(w, "  %d/%d scenes passed (%.0f%%), %d execution(s) in %s\n",
		sum.PassedScenes, sum.TotalScenes, sum.PassRate*100,
		sum.TotalExecutions, sum.Duration.Round(10*time.Millisecond))
}

// verdictLabel styles a per-execution verdict tag.
func verdictLabel(result *engine.ExecutionResult) string {
	switch result.Status {
	case engine.StatusPassed:
		return stylePass.Render("PASS")
	case engine.StatusFailed:
		return styleFail.Render("FAIL")
	case engine.StatusSkipped:
		return styleMuted.Render("SKIP")
	default:
		return styleWarn.Render("ERROR")
	}
}
