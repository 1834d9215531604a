package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/workflow-use/suitectl/pkg/models"
)

// Session is a chat session: an ordered message history plus the status of
// its most recent automation run. All methods are safe for concurrent use.
type Session struct {
	ID        string               `json:"id"`
	Messages  []models.ChatMessage `json:"messages"`
	Status    models.SessionStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`

	mu sync.RWMutex
}

// Export is the payload served by the export and download endpoints. The
// session snapshot already carries its messages; the top-level list is kept
// as well for consumers that only want the flat history.
type Export struct {
	Session  Session              `json:"session"`
	Messages []models.ChatMessage `json:"messages"`
}

// AppendMessage appends a new immutable message and returns a copy of it.
func (s *Session) AppendMessage(role models.MessageRole, content string, metadata map[string]any) models.ChatMessage {
	msg := models.ChatMessage{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}

	s.mu.Lock()
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = msg.Timestamp
	s.mu.Unlock()

	return msg
}

// SetStatus updates the session status.
func (s *Session) SetStatus(status models.SessionStatus) {
	s.mu.Lock()
	s.Status = status
	s.UpdatedAt = time.Now()
	s.mu.Unlock()
}

// CurrentStatus returns the session status.
func (s *Session) CurrentStatus() models.SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// MessageCount returns the number of messages in the history.
func (s *Session) MessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Messages)
}

// Clone returns a safe copy of the session for reading and marshalling.
func (s *Session) Clone() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]models.ChatMessage, len(s.Messages))
	copy(messages, s.Messages)

	return Session{
		ID:        s.ID,
		Messages:  messages,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ExportPayload builds the export document for this session. Both copies of
// the history come from the same locked read.
func (s *Session) ExportPayload() Export {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nested := make([]models.ChatMessage, len(s.Messages))
	copy(nested, s.Messages)
	flat := make([]models.ChatMessage, len(s.Messages))
	copy(flat, s.Messages)

	return Export{
		Session: Session{
			ID:        s.ID,
			Messages:  nested,
			Status:    s.Status,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		},
		Messages: flat,
	}
}
