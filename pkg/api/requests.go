package api

import "github.com/workflow-use/suitectl/pkg/models"

// SendMessageRequest is the HTTP request body for POST /api/chat/sessions/:id/messages.
// An empty provider defaults to openai; an empty model resolves to the
// provider's default model.
type SendMessageRequest struct {
	Message       string                `json:"message" binding:"required"`
	Provider      string                `json:"provider"`
	Model         string                `json:"model"`
	BrowserConfig *models.BrowserConfig `json:"browser_config"`
}
