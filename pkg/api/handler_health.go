package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workflow-use/suitectl/pkg/version"
)

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, &HealthResponse{
		Status:   "healthy",
		Version:  version.Full(),
		Sessions: s.sessions.Len(),
	})
}
