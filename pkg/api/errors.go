package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workflow-use/suitectl/pkg/executor"
	"github.com/workflow-use/suitectl/pkg/session"
)

// mapServiceError maps service-layer errors to an HTTP status and a
// client-facing message. sessionID is used in not-found messages.
func mapServiceError(err error, sessionID string) (int, string) {
	if errors.Is(err, session.ErrNotFound) {
		return http.StatusNotFound, fmt.Sprintf("Chat session %s not found", sessionID)
	}
	if errors.Is(err, executor.ErrRunActive) {
		return http.StatusConflict, "an automation run is already in progress for this session"
	}
	if errors.Is(err, executor.ErrSessionCancelled) {
		return http.StatusConflict, "chat session has been cancelled"
	}
	if errors.Is(err, executor.ErrShuttingDown) {
		return http.StatusServiceUnavailable, "server is shutting down"
	}

	// Unexpected error
	slog.Error("Unexpected service error", "error", err, "session_id", sessionID)
	return http.StatusInternalServerError, "internal server error"
}

// respondError writes the mapped error as a JSON body.
func respondError(c *gin.Context, err error, sessionID string) {
	status, msg := mapServiceError(err, sessionID)
	c.JSON(status, gin.H{"error": msg})
}
