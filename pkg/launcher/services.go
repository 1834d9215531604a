package launcher

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/workflow-use/suitectl/pkg/config"
)

// Service describes one long-running suite process: how to start it and
// how to tell it is ready.
type Service struct {
	// Name is the short identifier used in flags and logs.
	Name string

	// Display is the human-readable name used in console output.
	Display string

	// Command is the argv to start the service.
	Command []string

	// Dir is the working directory for the command; empty means the
	// current directory.
	Dir string

	// URL is the service's base URL, shown to the user once running.
	URL string

	// ReadyURL is polled until it answers 200.
	ReadyURL string

	// StartTimeout bounds the readiness poll.
	StartTimeout time.Duration
}

// Services builds the full suite table in start order: backend, web-ui,
// frontend. selfExe is the path of this binary; the backend is spawned
// as `selfExe serve`.
func Services(cfg *config.Config, selfExe string) []Service {
	return []Service{
		BackendService(cfg, selfExe),
		WebUIService(cfg),
		FrontendService(cfg),
	}
}

// BackendService runs the chat backend as a child `serve` process.
func BackendService(cfg *config.Config, selfExe string) Service {
	svc := cfg.Suite.Backend
	return Service{
		Name:         "backend",
		Display:      "Workflow backend",
		Command:      []string{selfExe, "serve"},
		URL:          svc.URL(),
		ReadyURL:     svc.URL() + "/health",
		StartTimeout: svc.StartTimeout,
	}
}

// WebUIService runs the browser-use web UI with the Python interpreter
// from the component's virtualenv when one exists.
func WebUIService(cfg *config.Config) Service {
	svc := cfg.Suite.WebUI
	return Service{
		Name:    "webui",
		Display: "Browser web UI",
		Command: []string{
			venvPython(svc.Dir), "webui.py",
			"--ip", svc.Host,
			"--port", strconv.Itoa(svc.Port),
		},
		Dir:          svc.Dir,
		URL:          svc.URL(),
		ReadyURL:     svc.URL(),
		StartTimeout: svc.StartTimeout,
	}
}

// FrontendService runs the Vite dev server for the workflow frontend.
func FrontendService(cfg *config.Config) Service {
	svc := cfg.Suite.Frontend
	return Service{
		Name:         "frontend",
		Display:      "Workflow frontend",
		Command:      []string{"npm", "run", "dev"},
		Dir:          svc.Dir,
		URL:          svc.URL(),
		ReadyURL:     svc.URL(),
		StartTimeout: svc.StartTimeout,
	}
}

// venvPython returns dir/.venv/bin/python when present, otherwise the
// python3 on PATH.
func venvPython(dir string) string {
	venv := filepath.Join(dir, ".venv", "bin", "python")
	if _, err := os.Stat(venv); err == nil {
		return venv
	}
	return "python3"
}
