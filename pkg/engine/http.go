package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/workflow-use/suitectl/pkg/models"
)

// runRequest is the JSON body POSTed to the engine's /run endpoint.
type runRequest struct {
	SessionID   string               `json:"session_id"`
	Instruction string               `json:"instruction"`
	Provider    string               `json:"provider"`
	Model       string               `json:"model"`
	APIKey      string               `json:"api_key"`
	Browser     models.BrowserConfig `json:"browser_config"`
}

// runResponse is the engine's reply.
type runResponse struct {
	Output string `json:"output"`
	Steps  int    `json:"steps"`
	Error  string `json:"error"`
}

// HTTPEngine talks JSON-over-HTTP to a remote automation engine.
type HTTPEngine struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEngine creates a client for the engine at baseURL.
func NewHTTPEngine(baseURL string) *HTTPEngine {
	return &HTTPEngine{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No client timeout; run deadlines come from the caller's context.
		client: &http.Client{},
	}
}

// Run POSTs the task to the engine and waits for the outcome.
func (e *HTTPEngine) Run(ctx context.Context, task Task) (*Result, error) {
	start := time.Now()

	jsonData, err := json.Marshal(runRequest{
		SessionID:   task.SessionID,
		Instruction: task.Instruction,
		Provider:    task.Provider,
		Model:       task.Model,
		APIKey:      task.APIKey,
		Browser:     task.Browser,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/run", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create run request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		// Context errors take precedence over transport errors.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to reach engine: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("engine error: %s - %s", resp.Status, string(body))
	}

	var out runResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal engine response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("engine reported failure: %s", out.Error)
	}

	return &Result{
		Output:   out.Output,
		Steps:    out.Steps,
		Duration: time.Since(start),
	}, nil
}

// Name identifies the engine implementation in logs.
func (e *HTTPEngine) Name() string {
	return "http"
}
