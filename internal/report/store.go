package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rigour-dev/rigour/internal/runner"
)

// LastReportFile is the filename of the persisted last-run report inside
// the report directory.
const LastReportFile = "last_report.json"

// StoredReport is the persisted form of a run: the summary plus per-scene
// verdict lines, enough for `rigour report` without the full payloads.
type StoredReport struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Summary     runner.Summary  `json:"summary"`
	Scenes      []StoredVerdict `json:"scenes"`
}

// StoredVerdict is one scene's condensed outcome.
type StoredVerdict struct {
	SceneID      string   `json:"scene_id"`
	Title        string   `json:"title"`
	Passed       bool     `json:"passed"`
	Healed       bool     `json:"healed"`
	ErrorMessage string   `json:"error_message,omitempty"`
	EdgeExplored int      `json:"edge_explored"`
	EdgePassed   int      `json:"edge_passed"`
	QualityScore *float64 `json:"quality_score,omitempty"`
}

// Save writes the run's report to <reportDir>/last_report.json, creating
// the directory if needed.
func Save(reportDir string, rr *runner.RunResult) error {
	stored := StoredReport{
		GeneratedAt: time.Now().UTC(),
		Summary:     runner.Summarize(rr),
	}
	for _, sr := range rr.Scenes {
		stored.Scenes = append(stored.Scenes, condense(sr))
	}

	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return fmt.Errorf("report: creating %s: %w", reportDir, err)
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("report: encoding report: %w", err)
	}

	path := filepath.Join(reportDir, LastReportFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: writing %s: %w", path, err)
	}
	return nil
}

// Load reads the persisted report from <reportDir>/last_report.json.
func Load(reportDir string) (*StoredReport, error) {
	path := filepath.Join(reportDir, LastReportFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("report: reading %s: %w", path, err)
	}

	var stored StoredReport
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("report: parsing %s: %w", path, err)
	}
	return &stored, nil
}

// condense reduces a SceneResult to its stored verdict.
func condense(sr *runner.SceneResult) StoredVerdict {
	v := StoredVerdict{
		SceneID: sr.Scene.ID,
		Title:   sr.Scene.Title,
		Passed:  sr.Passed,
	}
	if sr.Healed != nil && sr.Passed && !sr.Primary.Passed {
		v.Healed = true
	}
	if final := sr.Final(); final != nil && !final.Passed {
		v.ErrorMessage = final.ErrorMessage
	}
	for _, er := range sr.EdgeResults {
		v.EdgeExplored++
		if er.Passed {
			v.EdgePassed++
		}
	}
	if sr.Judgment != nil {
		score := sr.Judgment.Score
		v.QualityScore = &score
	}
	return v
}
