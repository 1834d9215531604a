package validate

import (
	"encoding/json"
	"math"
	"os"
	"time"
)

// Status of one validation check.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one check.
type Result struct {
	Name     string         `json:"name"`
	Status   Status         `json:"status"`
	Duration float64        `json:"duration"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
}

// Summary aggregates the run for the report header.
type Summary struct {
	TotalChecks   int     `json:"total_checks"`
	Passed        int     `json:"passed"`
	Failed        int     `json:"failed"`
	Skipped       int     `json:"skipped"`
	SuccessRate   float64 `json:"success_rate"`
	TotalDuration float64 `json:"total_duration"`
}

// Report is written to validation_report.json after a run.
type Report struct {
	Summary Summary  `json:"summary"`
	Results []Result `json:"results"`
}

// Write saves the report as indented JSON.
func (r *Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func buildReport(results []Result, total time.Duration) *Report {
	var s Summary
	s.TotalChecks = len(results)
	for _, r := range results {
		switch r.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	if s.TotalChecks > 0 {
		s.SuccessRate = math.Round(float64(s.Passed)/float64(s.TotalChecks)*10000) / 100
	}
	s.TotalDuration = roundSeconds(total)
	return &Report{Summary: s, Results: results}
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
