// Package executor owns the automation-run lifecycle for chat sessions: the
// one-run-per-session gate, cancellation, run timeouts, and graceful drain on
// shutdown.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/workflow-use/suitectl/pkg/config"
	"github.com/workflow-use/suitectl/pkg/engine"
	"github.com/workflow-use/suitectl/pkg/models"
	"github.com/workflow-use/suitectl/pkg/session"
)

// ─── Input and config types ─────────────────────────────────────────────────

// RunRequest groups the message-processing parameters for one run.
type RunRequest struct {
	Message  string
	Provider string
	Model    string
	Browser  *models.BrowserConfig // nil applies the configured defaults
}

// Config holds executor tunables.
type Config struct {
	RunTimeout      time.Duration        // max duration for one automation run
	BrowserDefaults models.BrowserConfig // applied when a request omits browser_config
}

// ─── Executor ───────────────────────────────────────────────────────────────

// Executor processes chat messages synchronously: it appends the user
// message, performs the automation run through the engine, and appends the
// assistant message. It enforces the one-run-per-session constraint,
// supports cancellation, and drains cleanly on shutdown.
type Executor struct {
	// Dependencies
	engine    engine.Engine
	providers *config.ProviderRegistry
	execCfg   Config
	tracer    trace.Tracer
	meter     metric.Meter

	// Active run tracking (for cancellation + shutdown)
	mu         sync.Mutex
	activeRuns map[string]context.CancelFunc // sessionID → cancel
	wg         sync.WaitGroup                // tracks in-flight runs for shutdown
	stopped    bool                          // reject new runs after Stop()
}

// NewExecutor creates an Executor backed by the given engine.
func NewExecutor(
	eng engine.Engine,
	providers *config.ProviderRegistry,
	execCfg Config,
	tracer trace.Tracer,
	meter metric.Meter,
) *Executor {
	return &Executor{
		engine:     eng,
		providers:  providers,
		execCfg:    execCfg,
		tracer:     tracer,
		meter:      meter,
		activeRuns: make(map[string]context.CancelFunc),
	}
}

// ─── Message-processing entry point ─────────────────────────────────────────

// Run appends the user message, executes the automation run, and appends the
// assistant message, returning it. Run failures (unknown provider, missing
// API key, engine errors, timeouts) still append an assistant error message
// and return it with a nil error; the non-nil errors (ErrRunActive,
// ErrSessionCancelled, ErrShuttingDown) mean nothing was appended or the run
// was interrupted before producing a message.
func (e *Executor) Run(ctx context.Context, sess *session.Session, req RunRequest) (models.ChatMessage, error) {
	sessionID := sess.ID
	logger := slog.With("session_id", sessionID, "provider", req.Provider)

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return models.ChatMessage{}, ErrShuttingDown
	}
	if _, active := e.activeRuns[sessionID]; active {
		e.mu.Unlock()
		return models.ChatMessage{}, ErrRunActive
	}
	// Detached from the request context: cancellation comes only from
	// Cancel, Stop, or the run timeout.
	runCtx, cancelRun := context.WithTimeout(context.Background(), e.execCfg.RunTimeout)
	e.activeRuns[sessionID] = cancelRun
	e.wg.Add(1)
	e.mu.Unlock()

	release := func() {
		cancelRun()
		e.mu.Lock()
		delete(e.activeRuns, sessionID)
		e.mu.Unlock()
		e.wg.Done()
	}

	// Cancellation callers mark the session cancelled before calling Cancel,
	// so checking the status after registering closes the race: a concurrent
	// cancellation either finds this run in the registry or is visible here.
	if sess.CurrentStatus() == models.StatusCancelled {
		release()
		return models.ChatMessage{}, ErrSessionCancelled
	}
	defer release()

	ctx, span := e.tracer.Start(ctx, "automation_run", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("llm.provider", req.Provider),
	))
	defer span.End()

	start := time.Now()

	// The user message lands before the run starts; every completed run
	// appends an assistant message after it, success or not.
	sess.AppendMessage(models.RoleUser, req.Message, nil)

	browser := e.execCfg.BrowserDefaults
	if req.Browser != nil {
		browser = *req.Browser
	}

	provider, err := e.providers.Get(req.Provider)
	if err != nil {
		e.recordRun(ctx, start, "error")
		return e.failRun(sess, req.Provider, err, logger), nil
	}
	model := provider.ResolveModel(req.Model)
	apiKey, err := provider.APIKey()
	if err != nil {
		e.recordRun(ctx, start, "error")
		return e.failRun(sess, req.Provider, err, logger), nil
	}

	logger.Info("Automation run starting",
		"model", model,
		"engine", e.engine.Name(),
		"headless", browser.Headless,
	)

	result, runErr := e.engine.Run(runCtx, engine.Task{
		SessionID:   sessionID,
		Instruction: req.Message,
		Provider:    req.Provider,
		Model:       model,
		APIKey:      apiKey,
		Browser:     browser,
	})

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			e.mu.Lock()
			stopped := e.stopped
			e.mu.Unlock()
			if stopped {
				logger.Info("Automation run interrupted by shutdown")
				e.recordRun(ctx, start, "shutdown")
				return models.ChatMessage{}, ErrShuttingDown
			}
			logger.Info("Automation run cancelled")
			e.recordRun(ctx, start, "cancelled")
			return models.ChatMessage{}, ErrSessionCancelled
		}
		if errors.Is(runErr, context.DeadlineExceeded) {
			runErr = fmt.Errorf("automation run timed out after %s", e.execCfg.RunTimeout)
			e.recordRun(ctx, start, "timeout")
		} else {
			e.recordRun(ctx, start, "error")
		}
		return e.failRun(sess, req.Provider, runErr, logger), nil
	}

	assistant := sess.AppendMessage(models.RoleAssistant, result.Output, map[string]any{
		"provider":       req.Provider,
		"model":          model,
		"browser_config": browser,
		"execution_result": map[string]any{
			"steps":       result.Steps,
			"duration_ms": result.Duration.Milliseconds(),
		},
	})
	sess.SetStatus(models.StatusCompleted)

	e.recordRun(ctx, start, "completed")
	logger.Info("Automation run completed",
		"model", model,
		"steps", result.Steps,
		"duration", result.Duration,
	)
	return assistant, nil
}

// failRun appends the assistant error message and marks the session failed.
func (e *Executor) failRun(sess *session.Session, provider string, cause error, logger *slog.Logger) models.ChatMessage {
	logger.Error("Automation run failed", "error", cause)

	msg := sess.AppendMessage(models.RoleAssistant,
		fmt.Sprintf("I encountered an error while processing your request: %v", cause),
		map[string]any{"error": cause.Error(), "provider": provider},
	)
	sess.SetStatus(models.StatusError)
	return msg
}

// ─── Cancellation ───────────────────────────────────────────────────────────

// Cancel aborts the active run for a session, returning true when one was
// found. Callers must set the session status to cancelled before calling
// Cancel so runs that have not yet registered are still refused.
func (e *Executor) Cancel(sessionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cancel, ok := e.activeRuns[sessionID]; ok {
		cancel()
		return true
	}
	return false
}

// Stop marks the executor as stopped, cancels all active runs, and waits for
// them to drain. Safe to call multiple times.
func (e *Executor) Stop() {
	e.mu.Lock()
	e.stopped = true
	for _, cancel := range e.activeRuns {
		cancel()
	}
	e.mu.Unlock()

	e.wg.Wait()
}

// ─── Telemetry ──────────────────────────────────────────────────────────────

// recordRun emits the run counter and duration histogram.
func (e *Executor) recordRun(ctx context.Context, start time.Time, outcome string) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))

	counter, err := e.meter.Int64Counter(
		"automation.runs",
		metric.WithDescription("Automation runs executed"),
	)
	if err != nil {
		slog.Warn("Failed to create run counter", "error", err)
	} else {
		counter.Add(ctx, 1, attrs)
	}

	histogram, err := e.meter.Float64Histogram(
		"automation.run.duration",
		metric.WithDescription("Automation run duration in milliseconds"),
	)
	if err != nil {
		slog.Warn("Failed to create run duration histogram", "error", err)
	} else {
		histogram.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	}
}
