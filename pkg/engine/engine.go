// Package engine defines the client seam for the external browser-automation
// engine. The chat backend never drives a browser itself; it hands each
// instruction to an Engine and records the outcome on the session.
package engine

import (
	"context"
	"time"

	"github.com/workflow-use/suitectl/pkg/models"
)

// Task is one automation run handed to the engine.
type Task struct {
	SessionID   string
	Instruction string
	Provider    string
	Model       string
	APIKey      string
	Browser     models.BrowserConfig
}

// Result is what a finished run produced.
type Result struct {
	Output   string
	Steps    int
	Duration time.Duration
}

// Engine executes automation runs on behalf of chat sessions.
type Engine interface {
	// Run executes the task, honoring ctx cancellation and deadlines.
	Run(ctx context.Context, task Task) (*Result, error)

	// Name identifies the engine implementation in logs.
	Name() string
}
