package deploy

import (
	"encoding/json"
	"math"
	"os"
	"time"
)

// Status of one deployment step.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusWarning Status = "warning"
)

// StepResult records one deployment step in the report.
type StepResult struct {
	Name     string  `json:"name"`
	Status   Status  `json:"status"`
	Duration float64 `json:"duration"`
	Error    string  `json:"error,omitempty"`
}

// Report is written to deployment_report.json at the end of a run,
// whether the deployment succeeded or not.
type Report struct {
	DeploymentTime string       `json:"deployment_time"`
	Status         Status       `json:"status"`
	Steps          []StepResult `json:"steps"`
	FilesCreated   []string     `json:"files_created"`
}

// Write saves the report as indented JSON.
func (r *Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (r *Report) failedSteps() int {
	n := 0
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			n++
		}
	}
	return n
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
