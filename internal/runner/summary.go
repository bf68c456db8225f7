package runner

import "time"

// Summary condenses a RunResult into the totals shown at the end of a run
// and persisted for the report command.
type Summary struct {
	TotalScenes  int `json:"total_scenes"`
	PassedScenes int `json:"passed_scenes"`
	FailedScenes int `json:"failed_scenes"`

	// HealedScenes counts scenes whose verdict flipped to passing through
	// self-healing.
	HealedScenes int `json:"healed_scenes"`

	// TotalExecutions counts every subprocess run: primary, healed, and
	// edge cases.
	TotalExecutions int `json:"total_executions"`

	EdgeCasesExplored int `json:"edge_cases_explored"`
	EdgeCasesPassed   int `json:"edge_cases_passed"`

	// PassRate is PassedScenes over TotalScenes, 0 for an empty run.
	PassRate float64 `json:"pass_rate"`

	// AvgQualityScore averages the judgment scores of scenes that were
	// judged with response data; nil when none were.
	AvgQualityScore *float64 `json:"avg_quality_score,omitempty"`

	Duration time.Duration `json:"duration"`
}

// Summarize computes the run totals from a RunResult.
func Summarize(rr *RunResult) Summary {
	sum := Summary{
		TotalScenes: len(rr.Scenes),
		Duration:    rr.Duration(),
	}

	var qualityTotal float64
	var qualityCount int

	for _, sr := range rr.Scenes {
		if sr.Passed {
			sum.PassedScenes++
		} else {
			sum.FailedScenes++
		}
		if sr.Primary != nil {
			sum.TotalExecutions++
		}
		if sr.Healed != nil {
			sum.TotalExecutions++
			if sr.Passed && !sr.Primary.Passed {
				sum.HealedScenes++
			}
		}
		for _, er := range sr.EdgeResults {
			sum.TotalExecutions++
			sum.EdgeCasesExplored++
			if er.Passed {
				sum.EdgeCasesPassed++
			}
		}
		if sr.Judgment != nil {
			qualityTotal += sr.Judgment.Score
			qualityCount++
		}
	}

	if sum.TotalScenes > 0 {
		sum.PassRate = float64(sum.PassedScenes) / float64(sum.TotalScenes)
	}
	if qualityCount > 0 {
		avg := qualityTotal / float64(qualityCount)
		sum.AvgQualityScore = &avg
	}

	return sum
}
