package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workflow-use/suitectl/pkg/executor"
	"github.com/workflow-use/suitectl/pkg/models"
)

// createSessionHandler handles POST /api/chat/sessions.
func (s *Server) createSessionHandler(c *gin.Context) {
	sess := s.sessions.Create()
	slog.Info("Chat session created", "session_id", sess.ID)

	if counter, err := s.meter.Int64Counter("chat.sessions.created"); err == nil {
		counter.Add(c.Request.Context(), 1)
	} else {
		slog.Warn("Failed to create session counter", "error", err)
	}

	c.JSON(http.StatusOK, &CreateSessionResponse{
		SessionID: sess.ID,
		Message:   fmt.Sprintf("Chat session %s created successfully", sess.ID),
	})
}

// listSessionsHandler handles GET /api/chat/sessions.
func (s *Server) listSessionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, &ListSessionsResponse{Sessions: s.sessions.List()})
}

// getSessionHandler handles GET /api/chat/sessions/:id.
func (s *Server) getSessionHandler(c *gin.Context) {
	sessionID := c.Param("id")

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		respondError(c, err, sessionID)
		return
	}

	c.JSON(http.StatusOK, sess.Clone())
}

// deleteSessionHandler handles DELETE /api/chat/sessions/:id.
// An in-flight automation run is cancelled before the session is removed.
func (s *Server) deleteSessionHandler(c *gin.Context) {
	sessionID := c.Param("id")

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		respondError(c, err, sessionID)
		return
	}

	// Status first, then Cancel: the order the executor's run gate relies on.
	sess.SetStatus(models.StatusCancelled)
	if s.exec.Cancel(sessionID) {
		slog.Info("Cancelled in-flight run of deleted session", "session_id", sessionID)
	}

	if err := s.sessions.Delete(sessionID); err != nil {
		respondError(c, err, sessionID)
		return
	}

	slog.Info("Chat session deleted", "session_id", sessionID)
	c.JSON(http.StatusOK, &ActionResponse{
		Success: true,
		Message: fmt.Sprintf("Chat session %s deleted successfully", sessionID),
	})
}

// sendMessageHandler handles POST /api/chat/sessions/:id/messages.
// The automation run is synchronous: the response carries the assistant
// message produced by the run.
func (s *Server) sendMessageHandler(c *gin.Context) {
	// 1. Look up the session.
	sessionID := c.Param("id")
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		respondError(c, err, sessionID)
		return
	}

	// 2. Bind and validate the request body.
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Provider == "" {
		req.Provider = "openai"
	}

	// 3. Run the automation. Run failures come back as the assistant error
	// message with a nil error; only gate rejections surface as errors here.
	msg, err := s.exec.Run(c.Request.Context(), sess, executor.RunRequest{
		Message:  req.Message,
		Provider: req.Provider,
		Model:    req.Model,
		Browser:  req.BrowserConfig,
	})
	if err != nil {
		respondError(c, err, sessionID)
		return
	}

	c.JSON(http.StatusOK, msg)
}

// cancelSessionHandler handles POST /api/chat/sessions/:id/cancel.
func (s *Server) cancelSessionHandler(c *gin.Context) {
	sessionID := c.Param("id")

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		respondError(c, err, sessionID)
		return
	}

	// Status first, then Cancel: the order the executor's run gate relies on.
	sess.SetStatus(models.StatusCancelled)
	if s.exec.Cancel(sessionID) {
		slog.Info("Cancelled in-flight automation run", "session_id", sessionID)
	}

	slog.Info("Chat session cancelled", "session_id", sessionID)
	c.JSON(http.StatusOK, &ActionResponse{
		Success: true,
		Message: fmt.Sprintf("Chat session %s cancelled successfully", sessionID),
	})
}

// exportSessionHandler handles GET /api/chat/sessions/:id/export.
func (s *Server) exportSessionHandler(c *gin.Context) {
	sessionID := c.Param("id")

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		respondError(c, err, sessionID)
		return
	}

	c.JSON(http.StatusOK, &ExportResponse{
		SessionData: sess.ExportPayload(),
		Success:     true,
		Message:     fmt.Sprintf("Chat session %s exported successfully", sessionID),
	})
}

// downloadSessionHandler handles GET /api/chat/sessions/:id/download.
// Serves the export document as a JSON file attachment.
func (s *Server) downloadSessionHandler(c *gin.Context) {
	sessionID := c.Param("id")

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		respondError(c, err, sessionID)
		return
	}

	payload, err := json.MarshalIndent(sess.ExportPayload(), "", "  ")
	if err != nil {
		respondError(c, err, sessionID)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=chat_session_%s.json", sessionID))
	c.Data(http.StatusOK, "application/json", payload)
}

// listProvidersHandler handles GET /api/chat/providers.
func (s *Server) listProvidersHandler(c *gin.Context) {
	c.JSON(http.StatusOK, &ProvidersResponse{Providers: s.cfg.Providers.ModelCatalog()})
}
