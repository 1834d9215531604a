// Package deploy prepares a machine to run the suite: it verifies the
// required tools, installs component dependencies, lays out the data
// directories and writes the initial .env configuration. Every run ends
// with a deployment_report.json describing what happened.
package deploy

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/workflow-use/suitectl/pkg/config"
	"github.com/workflow-use/suitectl/pkg/exec"
)

// ReportFile is the report name written under the deployment root.
const ReportFile = "deployment_report.json"

const envTemplate = `# Workflow-Use Suite Configuration
ENVIRONMENT=development
DEBUG=true

# API keys (add your keys here)
# OPENAI_API_KEY=your_key_here
# ANTHROPIC_API_KEY=your_key_here
# GOOGLE_API_KEY=your_key_here

# Service configuration
API_HOST=127.0.0.1
API_PORT=8000
WEBUI_HOST=127.0.0.1
WEBUI_PORT=7788

# Browser settings
BROWSER_HEADLESS=false
BROWSER_DISABLE_SECURITY=true
`

// Deployer runs the deployment steps against a target root directory.
type Deployer struct {
	runner exec.Runner
	out    io.Writer
	root   string
	cfg    *config.Config

	report Report
}

// New returns a Deployer for the given root directory. Component
// directories from cfg are resolved relative to root unless absolute.
func New(runner exec.Runner, out io.Writer, root string, cfg *config.Config) *Deployer {
	return &Deployer{runner: runner, out: out, root: root, cfg: cfg}
}

// Run executes the deployment. Missing prerequisites stop the run;
// later step failures are recorded and the remaining steps continue.
// The report is written in every case.
func (d *Deployer) Run(ctx context.Context) (*Report, error) {
	fmt.Fprintln(d.out, color.CyanString("Workflow-Use Suite deployment"))
	fmt.Fprintln(d.out)

	if d.checkPrerequisites(ctx) {
		d.setupWebUI(ctx)
		d.setupFrontend(ctx)
		d.createDirectories()
		d.writeEnvFile()
	}

	d.report.DeploymentTime = time.Now().Format("2006-01-02 15:04:05")
	d.report.Status = StatusSuccess
	if d.report.failedSteps() > 0 {
		d.report.Status = StatusFailed
	}

	reportPath := filepath.Join(d.root, ReportFile)
	if err := d.report.Write(reportPath); err != nil {
		return &d.report, fmt.Errorf("failed to write %s: %w", ReportFile, err)
	}

	d.printSummary()

	if d.report.Status == StatusFailed {
		return &d.report, fmt.Errorf("deployment failed: %d of %d steps failed",
			d.report.failedSteps(), len(d.report.Steps))
	}
	return &d.report, nil
}

func (d *Deployer) record(name string, start time.Time, status Status, err error) {
	step := StepResult{Name: name, Status: status, Duration: roundSeconds(time.Since(start))}
	if err != nil {
		step.Error = err.Error()
	}
	d.report.Steps = append(d.report.Steps, step)
}

func (d *Deployer) checkPrerequisites(ctx context.Context) bool {
	const name = "Check prerequisites"
	start := time.Now()
	fmt.Fprintln(d.out, "Checking prerequisites...")

	var missing []string
	for _, ts := range CheckPrerequisites(ctx, d.runner) {
		if ts.OK {
			fmt.Fprintf(d.out, "  %s %s: %s\n", color.GreenString("✓"), ts.Name, ts.Version)
			continue
		}
		fmt.Fprintf(d.out, "  %s %s: %s\n", color.RedString("✗"), ts.Name, ts.Detail)
		missing = append(missing, ts.Name)
	}

	if len(missing) > 0 {
		d.record(name, start, StatusFailed, fmt.Errorf("missing or outdated: %s", strings.Join(missing, ", ")))
		return false
	}
	d.record(name, start, StatusSuccess, nil)
	return true
}

// setupWebUI installs the web UI's Python dependencies, preferring uv
// and falling back to venv+pip. A missing component directory is
// recorded as skipped, not failed; deployments are expected to run
// before every component has been cloned.
func (d *Deployer) setupWebUI(ctx context.Context) {
	const name = "Install web UI dependencies"
	start := time.Now()

	dir := d.componentDir(d.cfg.Suite.WebUI.Dir)
	if _, err := os.Stat(dir); err != nil {
		fmt.Fprintf(d.out, "%s Web UI directory not found, skipping dependency install\n", color.YellowString("⚠"))
		d.record(name, start, StatusSkipped, nil)
		return
	}

	useUV := false
	if _, err := d.runner.Run(ctx, "uv", "--version"); err == nil {
		useUV = true
	}

	if err := d.installPythonDeps(ctx, dir, useUV); err != nil {
		fmt.Fprintf(d.out, "%s Failed to install web UI dependencies: %v\n", color.RedString("✗"), err)
		d.record(name, start, StatusFailed, err)
		return
	}

	// A failed browser download downgrades the step to a warning; the
	// rest of the deployment still counts.
	python := filepath.Join(dir, ".venv", "bin", "python")
	if _, err := d.runner.RunInDir(ctx, dir, python, "-m", "playwright", "install", "chromium"); err != nil {
		fmt.Fprintf(d.out, "%s Browser installation had issues: %v\n", color.YellowString("⚠"), err)
		d.record(name, start, StatusWarning, err)
		return
	}

	fmt.Fprintf(d.out, "%s Web UI dependencies installed\n", color.GreenString("✓"))
	d.record(name, start, StatusSuccess, nil)
}

func (d *Deployer) installPythonDeps(ctx context.Context, dir string, useUV bool) error {
	venvMissing := true
	if _, err := os.Stat(filepath.Join(dir, ".venv")); err == nil {
		venvMissing = false
	}

	if useUV {
		if venvMissing {
			if _, err := d.runner.RunInDir(ctx, dir, "uv", "venv"); err != nil {
				return fmt.Errorf("uv venv: %w", err)
			}
		}
		if _, err := d.runner.RunInDir(ctx, dir, "uv", "pip", "install", "-r", "requirements.txt"); err != nil {
			return fmt.Errorf("uv pip install: %w", err)
		}
		return nil
	}

	if venvMissing {
		if _, err := d.runner.RunInDir(ctx, dir, "python3", "-m", "venv", ".venv"); err != nil {
			return fmt.Errorf("create virtualenv: %w", err)
		}
	}
	pip := filepath.Join(dir, ".venv", "bin", "pip")
	if _, err := d.runner.RunInDir(ctx, dir, pip, "install", "-r", "requirements.txt"); err != nil {
		return fmt.Errorf("pip install: %w", err)
	}
	return nil
}

func (d *Deployer) setupFrontend(ctx context.Context) {
	const name = "Install frontend dependencies"
	start := time.Now()

	dir := d.componentDir(d.cfg.Suite.Frontend.Dir)
	if _, err := os.Stat(dir); err != nil {
		fmt.Fprintf(d.out, "%s Frontend directory not found, skipping dependency install\n", color.YellowString("⚠"))
		d.record(name, start, StatusSkipped, nil)
		return
	}

	if _, err := d.runner.RunInDir(ctx, dir, "npm", "install"); err != nil {
		fmt.Fprintf(d.out, "%s Failed to install frontend dependencies: %v\n", color.RedString("✗"), err)
		d.record(name, start, StatusFailed, fmt.Errorf("npm install: %w", err))
		return
	}

	fmt.Fprintf(d.out, "%s Frontend dependencies installed\n", color.GreenString("✓"))
	d.record(name, start, StatusSuccess, nil)
}

func (d *Deployer) createDirectories() {
	const name = "Create directories"
	start := time.Now()

	for _, dir := range []string{"data", "logs", "workflows"} {
		path := filepath.Join(d.root, dir)
		if err := os.MkdirAll(path, 0755); err != nil {
			fmt.Fprintf(d.out, "%s Failed to create %s: %v\n", color.RedString("✗"), dir, err)
			d.record(name, start, StatusFailed, err)
			return
		}
		d.report.FilesCreated = append(d.report.FilesCreated, dir+"/")
	}

	d.record(name, start, StatusSuccess, nil)
}

// writeEnvFile creates the initial .env. An existing file is left
// untouched; it may hold the user's API keys.
func (d *Deployer) writeEnvFile() {
	const name = "Write configuration"
	start := time.Now()

	path := filepath.Join(d.root, ".env")
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(d.out, "%s Configuration file already exists\n", color.GreenString("✓"))
		d.record(name, start, StatusSuccess, nil)
		return
	}

	if err := os.WriteFile(path, []byte(envTemplate), 0644); err != nil {
		fmt.Fprintf(d.out, "%s Failed to write .env: %v\n", color.RedString("✗"), err)
		d.record(name, start, StatusFailed, err)
		return
	}

	fmt.Fprintf(d.out, "%s Configuration file created\n", color.GreenString("✓"))
	d.report.FilesCreated = append(d.report.FilesCreated, ".env")
	d.record(name, start, StatusSuccess, nil)
}

func (d *Deployer) componentDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.root, dir)
}

func (d *Deployer) printSummary() {
	fmt.Fprintln(d.out)
	if d.report.Status == StatusSuccess {
		fmt.Fprintln(d.out, color.GreenString("Deployment complete"))
	} else {
		fmt.Fprintln(d.out, color.RedString("Deployment finished with failures"))
	}

	if len(d.report.FilesCreated) > 0 {
		fmt.Fprintln(d.out, "Created:")
		for _, f := range d.report.FilesCreated {
			fmt.Fprintf(d.out, "  - %s\n", f)
		}
	}

	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, "Next steps:")
	fmt.Fprintln(d.out, "  1. Edit .env to add your API keys")
	fmt.Fprintln(d.out, "  2. Run `suitectl launch suite` to start the suite")
}
