package api

import "github.com/workflow-use/suitectl/pkg/session"

// CreateSessionResponse is returned by POST /api/chat/sessions.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ListSessionsResponse is returned by GET /api/chat/sessions.
type ListSessionsResponse struct {
	Sessions []session.Session `json:"sessions"`
}

// ActionResponse is returned by the cancel and delete endpoints.
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ProvidersResponse is returned by GET /api/chat/providers.
type ProvidersResponse struct {
	Providers map[string][]string `json:"providers"`
}

// ExportResponse is returned by GET /api/chat/sessions/:id/export.
type ExportResponse struct {
	SessionData session.Export `json:"session_data"`
	Success     bool           `json:"success"`
	Message     string         `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Sessions int    `json:"sessions"`
}
