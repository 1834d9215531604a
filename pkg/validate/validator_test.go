package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workflow-use/suitectl/pkg/exec"
)

const healthyBody = `{"status":"healthy","version":"suitectl/test","sessions":0}`

func validatorRunner(selfExe string) *exec.MockRunner {
	m := exec.NewMockRunner()
	m.AddResponse("python3", exec.MockResponse{Output: []byte("Python 3.12.1\n")})
	m.AddResponse("git", exec.MockResponse{Output: []byte("git version 2.43.0\n")})
	m.AddResponse("node", exec.MockResponse{Output: []byte("v20.11.0\n")})
	m.AddResponse("npm", exec.MockResponse{Output: []byte("10.2.4\n")})
	m.AddResponse(selfExe, exec.MockResponse{Output: []byte("suitectl/dev\n")})
	return m
}

// newLiveValidator wires a validator against an httptest backend. The
// config check reads a suite.yaml pointing the API at that server, so
// the HTTP checks have something real to talk to.
func newLiveValidator(t *testing.T, opts Options, healthJSON string) (*Validator, *exec.MockRunner, *bytes.Buffer) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, healthJSON)
	})
	mux.HandleFunc("/api/chat/providers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"providers":{"openai":["gpt-4o"]}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	configDir := t.TempDir()
	suiteYAML := fmt.Sprintf("api:\n  host: %s\n  port: %s\n", u.Hostname(), u.Port())
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "suite.yaml"), []byte(suiteYAML), 0644))

	opts.ConfigDir = configDir
	if opts.SelfExe == "" {
		opts.SelfExe = "suitectl-test"
	}

	m := validatorRunner(opts.SelfExe)
	var buf bytes.Buffer
	v := New(m, &buf, opts)
	v.pollInterval = 5 * time.Millisecond
	v.stopGrace = 10 * time.Millisecond
	return v, m, &buf
}

func resultNames(r *Report) []string {
	names := make([]string, len(r.Results))
	for i, res := range r.Results {
		names[i] = res.Name
	}
	return names
}

func TestValidatorAllChecksPass(t *testing.T) {
	v, m, out := newLiveValidator(t, Options{}, healthyBody)

	report := v.Run(context.Background())

	assert.Equal(t, []string{
		"Environment Setup",
		"Launcher Binary",
		"Configuration Loading",
		"Backend Startup",
		"Providers Endpoint",
		"Full Suite Readiness",
	}, resultNames(report))

	assert.Equal(t, 6, report.Summary.TotalChecks)
	assert.Equal(t, 6, report.Summary.Passed)
	assert.Equal(t, 0, report.Summary.Failed)
	assert.Equal(t, 100.0, report.Summary.SuccessRate)

	providers := report.Results[4]
	assert.Equal(t, StatusPassed, providers.Status)
	assert.Equal(t, []string{"openai"}, providers.Details["providers"])

	// The backend child is stopped on the way out.
	procs := m.StartedProcs()
	require.Len(t, procs, 1)
	assert.True(t, procs[0].Killed())

	assert.Contains(t, out.String(), "Validation results")
}

func TestValidatorSkipSuite(t *testing.T) {
	v, _, _ := newLiveValidator(t, Options{SkipSuite: true}, healthyBody)

	report := v.Run(context.Background())

	last := report.Results[len(report.Results)-1]
	assert.Equal(t, "Full Suite Readiness", last.Name)
	assert.Equal(t, StatusSkipped, last.Status)
	assert.Equal(t, "Skipped by request", last.Message)
	assert.Equal(t, 5, report.Summary.Passed)
	assert.Equal(t, 1, report.Summary.Skipped)
	assert.Equal(t, 0, report.Summary.Failed)
}

func TestValidatorUnhealthyBackend(t *testing.T) {
	v, _, _ := newLiveValidator(t, Options{}, `{"status":"degraded"}`)

	report := v.Run(context.Background())

	backend := report.Results[3]
	assert.Equal(t, "Backend Startup", backend.Name)
	assert.Equal(t, StatusFailed, backend.Status)
	assert.Contains(t, backend.Message, "unhealthy")

	// Backend startup is not critical; the remaining checks still ran.
	providers := report.Results[4]
	assert.Equal(t, StatusPassed, providers.Status)
	assert.Equal(t, 1, report.Summary.Failed)
}

func TestValidatorCriticalFailureSkipsRest(t *testing.T) {
	m := validatorRunner("suitectl-test")
	m.AddResponse("python3", exec.MockResponse{Err: errors.New("not found")})
	var buf bytes.Buffer
	v := New(m, &buf, Options{SelfExe: "suitectl-test", ConfigDir: t.TempDir()})

	report := v.Run(context.Background())

	require.Len(t, report.Results, 6)
	assert.Equal(t, StatusFailed, report.Results[0].Status)
	for _, res := range report.Results[1:] {
		assert.Equal(t, StatusSkipped, res.Status, res.Name)
		assert.Equal(t, "Skipped after critical failure", res.Message)
	}
	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t, 5, report.Summary.Skipped)

	// Nothing past the first check ran.
	assert.NotContains(t, m.CallNames(), "suitectl-test")
	assert.Empty(t, m.StartedProcs())
}

func TestValidatorLauncherFailureIsCritical(t *testing.T) {
	m := validatorRunner("suitectl-test")
	m.AddResponse("suitectl-test", exec.MockResponse{Err: errors.New("permission denied")})
	var buf bytes.Buffer
	v := New(m, &buf, Options{SelfExe: "suitectl-test", ConfigDir: t.TempDir()})

	report := v.Run(context.Background())

	assert.Equal(t, StatusPassed, report.Results[0].Status)
	assert.Equal(t, StatusFailed, report.Results[1].Status)
	for _, res := range report.Results[2:] {
		assert.Equal(t, StatusSkipped, res.Status, res.Name)
	}
	assert.Empty(t, m.StartedProcs())
}

func TestBuildReport(t *testing.T) {
	results := []Result{
		{Name: "a", Status: StatusPassed},
		{Name: "b", Status: StatusPassed},
		{Name: "c", Status: StatusFailed},
		{Name: "d", Status: StatusSkipped},
	}

	report := buildReport(results, 1510*time.Millisecond)

	assert.Equal(t, 4, report.Summary.TotalChecks)
	assert.Equal(t, 2, report.Summary.Passed)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t, 1, report.Summary.Skipped)
	assert.Equal(t, 50.0, report.Summary.SuccessRate)
	assert.Equal(t, 1.51, report.Summary.TotalDuration)
}

func TestReportWrite(t *testing.T) {
	report := buildReport([]Result{
		{Name: "Environment Setup", Status: StatusPassed, Message: "All 4 tool checks passed"},
	}, time.Second)

	path := filepath.Join(t.TempDir(), ReportFile)
	require.NoError(t, report.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	summary, ok := parsed["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), summary["total_checks"])
	assert.Equal(t, float64(1), summary["passed"])
}
