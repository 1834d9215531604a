package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// StubEngine completes runs locally without touching a browser. It serves as
// the engine when no ENGINE_URL is configured and keeps tests hermetic.
// The zero value completes every run with a canned summary.
type StubEngine struct {
	// Output replaces the canned summary when set.
	Output string

	// Err fails every run when set.
	Err error

	// Latency delays completion while still honoring ctx.
	Latency time.Duration
}

// NewStubEngine creates a stub engine with default behavior.
func NewStubEngine() *StubEngine {
	return &StubEngine{}
}

// Run completes immediately (or after Latency) without any automation.
func (e *StubEngine) Run(ctx context.Context, task Task) (*Result, error) {
	start := time.Now()

	if e.Latency > 0 {
		select {
		case <-time.After(e.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.Err != nil {
		return nil, e.Err
	}

	slog.Info("Stub engine: no automation performed",
		"session_id", task.SessionID,
		"provider", task.Provider,
		"model", task.Model,
	)

	output := e.Output
	if output == "" {
		output = fmt.Sprintf(
			"Automation run completed for task: %s (provider: %s, model: %s, headless: %t)",
			task.Instruction, task.Provider, task.Model, task.Browser.Headless,
		)
	}

	return &Result{
		Output:   output,
		Steps:    1,
		Duration: time.Since(start),
	}, nil
}

// Name identifies the engine implementation in logs.
func (e *StubEngine) Name() string {
	return "stub"
}
