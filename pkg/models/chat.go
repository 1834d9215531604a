// Package models contains the chat domain types shared across packages.
package models

import "time"

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// SessionStatus is the lifecycle state of a chat session.
type SessionStatus string

const (
	// StatusActive is the initial state; no automation run has finished yet.
	StatusActive SessionStatus = "active"
	// StatusCompleted means the most recent automation run succeeded.
	StatusCompleted SessionStatus = "completed"
	// StatusError means the most recent automation run failed.
	StatusError SessionStatus = "error"
	// StatusCancelled means the session was cancelled. Cancellation is
	// terminal: history is retained but no further messages are accepted.
	StatusCancelled SessionStatus = "cancelled"
)

// Terminal reports whether the status marks a finished run. Terminal
// sessions are eligible for retention sweeping; all but cancelled remain
// conversational.
func (s SessionStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusCancelled:
		return true
	}
	return false
}

// ChatMessage is a single entry in a session's conversation history.
// Messages are immutable once appended and ordered by append time.
type ChatMessage struct {
	ID        string         `json:"id"`
	Role      MessageRole    `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// BrowserConfig controls how the automation engine drives its browser.
type BrowserConfig struct {
	Headless        bool `json:"headless"`
	DisableSecurity bool `json:"disable_security"`
}

// DefaultBrowserConfig returns the defaults applied when a message request
// omits browser_config: headed browser, security sandboxing disabled.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:        false,
		DisableSecurity: true,
	}
}
