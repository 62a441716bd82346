package types

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ConversationMessage is one turn of a chat session. History grows by one
// user entry per message and one assistant entry per successful reply; it is
// never reordered or truncated within a session.
type ConversationMessage struct {
	ID        uuid.UUID   `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// ChatSession holds the per-session mutable state. Sessions never share
// state with each other; the store hands out copies for reads.
type ChatSession struct {
	ID        uuid.UUID             `json:"id"`
	History   []ConversationMessage `json:"history"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Message   string    `json:"message"`
}

// Stream event types for SSE chat turns.
const (
	EventTypeProgress = "progress"
	EventTypeChunk    = "chunk"
	EventTypeComplete = "complete"
	EventTypeError    = "error"
)

// StreamEvent is one increment of a streamed turn. A terminal event has
// IsFinal set; an error event carries Error and discards any partial text.
type StreamEvent struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	IsFinal   bool        `json:"is_final,omitempty"`
	EventID   string      `json:"event_id"`
	Timestamp time.Time   `json:"timestamp"`
}
