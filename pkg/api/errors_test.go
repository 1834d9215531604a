package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workflow-use/suitectl/pkg/executor"
	"github.com/workflow-use/suitectl/pkg/session"
)

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		expectCode int
		expectMsg  string
	}{
		{
			name:       "not found maps to 404",
			err:        fmt.Errorf("wrapped: %w", session.ErrNotFound),
			expectCode: http.StatusNotFound,
			expectMsg:  "Chat session abc123 not found",
		},
		{
			name:       "active run maps to 409",
			err:        executor.ErrRunActive,
			expectCode: http.StatusConflict,
			expectMsg:  "already in progress",
		},
		{
			name:       "cancelled session maps to 409",
			err:        fmt.Errorf("wrapped: %w", executor.ErrSessionCancelled),
			expectCode: http.StatusConflict,
			expectMsg:  "has been cancelled",
		},
		{
			name:       "shutdown maps to 503",
			err:        executor.ErrShuttingDown,
			expectCode: http.StatusServiceUnavailable,
			expectMsg:  "shutting down",
		},
		{
			name:       "unknown error maps to 500",
			err:        fmt.Errorf("something unexpected happened"),
			expectCode: http.StatusInternalServerError,
			expectMsg:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := mapServiceError(tt.err, "abc123")
			assert.Equal(t, tt.expectCode, status)
			assert.Contains(t, msg, tt.expectMsg)
		})
	}
}
