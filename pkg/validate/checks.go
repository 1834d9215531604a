package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/workflow-use/suitectl/pkg/config"
	"github.com/workflow-use/suitectl/pkg/deploy"
)

func (v *Validator) checkEnvironment(ctx context.Context) Result {
	statuses := deploy.CheckPrerequisites(ctx, v.runner)

	passed := 0
	for _, ts := range statuses {
		if ts.OK {
			passed++
		}
	}

	details := map[string]any{"tools": statuses}
	if passed < len(statuses) {
		return Result{
			Status:  StatusFailed,
			Message: fmt.Sprintf("%d/%d tool checks passed", passed, len(statuses)),
			Details: details,
		}
	}
	return Result{
		Status:  StatusPassed,
		Message: fmt.Sprintf("All %d tool checks passed", len(statuses)),
		Details: details,
	}
}

func (v *Validator) checkLauncherBinary(ctx context.Context) Result {
	out, err := v.runner.Run(ctx, v.opts.SelfExe, "version")
	if err != nil {
		return Result{Status: StatusFailed, Message: fmt.Sprintf("Launcher did not run: %v", err)}
	}

	banner := strings.TrimSpace(string(out))
	if !strings.Contains(banner, "suitectl") {
		return Result{
			Status:  StatusFailed,
			Message: "Launcher produced unexpected version output",
			Details: map[string]any{"output": banner},
		}
	}
	return Result{Status: StatusPassed, Message: "Launcher responded with " + banner}
}

func (v *Validator) checkConfiguration(ctx context.Context) Result {
	cfg, err := config.Load(v.opts.ConfigDir)
	if err != nil {
		return Result{Status: StatusFailed, Message: fmt.Sprintf("Configuration failed to load: %v", err)}
	}
	v.cfg = cfg

	stats := cfg.Stats()
	return Result{
		Status:  StatusPassed,
		Message: fmt.Sprintf("Configuration loaded (%d providers, %d models)", stats.Providers, stats.Models),
		Details: map[string]any{
			"api_addr":  cfg.API.Addr(),
			"providers": stats.Providers,
			"models":    stats.Models,
		},
	}
}

func (v *Validator) checkBackendStartup(ctx context.Context) Result {
	cfg := v.activeConfig()
	base := "http://" + cfg.API.Addr()

	proc, err := v.runner.Start(ctx, "", v.opts.SelfExe, "serve")
	if err != nil {
		return Result{Status: StatusFailed, Message: fmt.Sprintf("Failed to start backend: %v", err)}
	}
	v.procs = append(v.procs, proc)

	if !v.waitFor(ctx, base+"/health", cfg.Suite.Backend.StartTimeout) {
		return Result{Status: StatusFailed, Message: "Backend did not answer its health check in time"}
	}

	health, err := v.getJSON(ctx, base+"/health")
	if err != nil {
		return Result{Status: StatusFailed, Message: fmt.Sprintf("Health check failed: %v", err)}
	}
	if health["status"] != "healthy" {
		return Result{
			Status:  StatusFailed,
			Message: "Backend reported an unhealthy status",
			Details: map[string]any{"health_response": health},
		}
	}
	return Result{
		Status:  StatusPassed,
		Message: "Backend started and health check passed",
		Details: map[string]any{"health_response": health},
	}
}

// checkProvidersEndpoint reuses the backend started by the previous
// check; it fails with a connection error when that one did not come up.
func (v *Validator) checkProvidersEndpoint(ctx context.Context) Result {
	base := "http://" + v.activeConfig().API.Addr()

	body, err := v.getJSON(ctx, base+"/api/chat/providers")
	if err != nil {
		return Result{Status: StatusFailed, Message: fmt.Sprintf("Providers endpoint failed: %v", err)}
	}

	providers, _ := body["providers"].(map[string]any)
	if len(providers) == 0 {
		return Result{Status: StatusFailed, Message: "Providers endpoint returned no providers"}
	}

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return Result{
		Status:  StatusPassed,
		Message: fmt.Sprintf("Providers endpoint returned %d providers", len(names)),
		Details: map[string]any{"providers": names},
	}
}

func (v *Validator) checkSuiteReadiness(ctx context.Context) Result {
	cfg := v.activeConfig()
	services := []struct {
		name string
		url  string
	}{
		{"backend", "http://" + cfg.API.Addr() + "/health"},
		{"webui", cfg.Suite.WebUI.URL()},
		{"frontend", cfg.Suite.Frontend.URL()},
	}

	var working []string
	for _, svc := range services {
		if v.probe(ctx, svc.url) {
			working = append(working, svc.name)
		}
	}

	if len(working) == 0 {
		return Result{Status: StatusFailed, Message: "No services responding"}
	}
	return Result{
		Status:  StatusPassed,
		Message: fmt.Sprintf("%d of %d services responding", len(working), len(services)),
		Details: map[string]any{"working_services": working},
	}
}

func (v *Validator) activeConfig() *config.Config {
	if v.cfg != nil {
		return v.cfg
	}
	return config.DefaultConfig()
}

// waitFor polls url once per interval until it answers 200 or the
// timeout elapses.
func (v *Validator) waitFor(ctx context.Context, url string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if v.probe(ctx, url) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(v.pollInterval):
		}
	}
}

func (v *Validator) probe(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (v *Validator) getJSON(ctx context.Context, url string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}
