// Package validate runs post-deployment checks against an installed
// suite: tool prerequisites, the launcher binary, configuration
// loading and a live backend. Checks run in a fixed order; a critical
// failure stops the run and marks the remaining checks skipped.
package validate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/workflow-use/suitectl/pkg/config"
	"github.com/workflow-use/suitectl/pkg/exec"
)

// ReportFile is the report name written after a validation run.
const ReportFile = "validation_report.json"

// Options configures a Validator.
type Options struct {
	// SelfExe is the path of the suitectl binary under test.
	SelfExe string

	// ConfigDir is passed to config.Load during the configuration check.
	ConfigDir string

	// SkipSuite marks the full-suite readiness check skipped.
	SkipSuite bool
}

// Validator executes the check sequence and collects results.
type Validator struct {
	runner exec.Runner
	out    io.Writer
	client *http.Client
	opts   Options

	pollInterval time.Duration
	stopGrace    time.Duration

	// cfg is set by the configuration check; later checks fall back to
	// defaults when it failed.
	cfg   *config.Config
	procs []exec.Process
}

// New returns a Validator writing console output to out.
func New(runner exec.Runner, out io.Writer, opts Options) *Validator {
	return &Validator{
		runner:       runner,
		out:          out,
		client:       &http.Client{Timeout: 5 * time.Second},
		opts:         opts,
		pollInterval: time.Second,
		stopGrace:    2 * time.Second,
	}
}

// check is one entry in the validation sequence. Critical checks stop
// the run when they fail; optional checks can be skipped by request.
type check struct {
	name     string
	critical bool
	optional bool
	run      func(ctx context.Context) Result
}

func (v *Validator) checks() []check {
	return []check{
		{name: "Environment Setup", critical: true, run: v.checkEnvironment},
		{name: "Launcher Binary", critical: true, run: v.checkLauncherBinary},
		{name: "Configuration Loading", run: v.checkConfiguration},
		{name: "Backend Startup", run: v.checkBackendStartup},
		{name: "Providers Endpoint", run: v.checkProvidersEndpoint},
		{name: "Full Suite Readiness", optional: true, run: v.checkSuiteReadiness},
	}
}

// Run executes all checks and returns the report. Processes started by
// checks are stopped before it returns.
func (v *Validator) Run(ctx context.Context) *Report {
	start := time.Now()
	defer v.cleanup()

	fmt.Fprintln(v.out, color.CyanString("Workflow-Use Suite validation"))
	fmt.Fprintln(v.out)

	var results []Result
	stopped := false
	for _, c := range v.checks() {
		switch {
		case stopped:
			res := Result{Name: c.name, Status: StatusSkipped, Message: "Skipped after critical failure"}
			v.logResult(res)
			results = append(results, res)
		case c.optional && v.opts.SkipSuite:
			res := Result{Name: c.name, Status: StatusSkipped, Message: "Skipped by request"}
			v.logResult(res)
			results = append(results, res)
		default:
			res := v.runCheck(ctx, c)
			results = append(results, res)
			if res.Status == StatusFailed && c.critical {
				v.log(color.RedString("Critical check failed: " + c.name))
				stopped = true
			}
		}
	}

	report := buildReport(results, time.Since(start))
	v.printSummary(report)
	return report
}

func (v *Validator) runCheck(ctx context.Context, c check) Result {
	v.log("Running: " + c.name)
	start := time.Now()
	res := c.run(ctx)
	res.Name = c.name
	res.Duration = roundSeconds(time.Since(start))
	v.logResult(res)
	return res
}

func (v *Validator) log(msg string) {
	fmt.Fprintf(v.out, "%s %s\n", color.HiBlackString(time.Now().Format("15:04:05")), msg)
}

func (v *Validator) logResult(res Result) {
	symbol := color.YellowString("-")
	switch res.Status {
	case StatusPassed:
		symbol = color.GreenString("✓")
	case StatusFailed:
		symbol = color.RedString("✗")
	}
	v.log(fmt.Sprintf("%s %s: %s", symbol, res.Name, res.Message))
}

// cleanup stops every process a check started, SIGTERM first and
// SIGKILL after the grace period.
func (v *Validator) cleanup() {
	for _, p := range v.procs {
		done := make(chan struct{})
		go func(p exec.Process) {
			_ = p.Wait()
			close(done)
		}(p)

		_ = p.Signal(syscall.SIGTERM)
		select {
		case <-done:
		case <-time.After(v.stopGrace):
			_ = p.Kill()
			<-done
		}
	}
	v.procs = nil
}

func (v *Validator) printSummary(r *Report) {
	s := r.Summary
	fmt.Fprintln(v.out)
	fmt.Fprintln(v.out, color.CyanString("Validation results"))
	fmt.Fprintf(v.out, "  Total checks: %d\n", s.TotalChecks)
	fmt.Fprintf(v.out, "  Passed:       %s\n", color.GreenString(strconv.Itoa(s.Passed)))
	fmt.Fprintf(v.out, "  Failed:       %s\n", color.RedString(strconv.Itoa(s.Failed)))
	fmt.Fprintf(v.out, "  Skipped:      %s\n", color.YellowString(strconv.Itoa(s.Skipped)))
	fmt.Fprintf(v.out, "  Success rate: %.1f%%\n", s.SuccessRate)
	fmt.Fprintf(v.out, "  Duration:     %.1fs\n", s.TotalDuration)
	fmt.Fprintln(v.out)
	for _, res := range r.Results {
		fmt.Fprintf(v.out, "  %-7s %s: %s\n", strings.ToUpper(string(res.Status)), res.Name, res.Message)
	}
}
