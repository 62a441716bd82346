package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gangwonlab/tour-concierge/internal/types"
)

// Repository stores chat sessions in memory for the process lifetime.
// Sessions never share state; reads hand out copies so callers cannot
// mutate the stored history.
type Repository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*types.ChatSession
}

func NewRepository() *Repository {
	return &Repository{sessions: make(map[uuid.UUID]*types.ChatSession)}
}

func (r *Repository) Create(_ context.Context) *types.ChatSession {
	now := time.Now()
	session := &types.ChatSession{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	return copySession(session)
}

func (r *Repository) Get(_ context.Context, id uuid.UUID) (*types.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, types.ErrSessionNotFound
	}
	return copySession(session), nil
}

// Append adds one message to a session's history.
func (r *Repository) Append(_ context.Context, id uuid.UUID, role types.MessageRole, content string) (types.ConversationMessage, error) {
	msg := types.ConversationMessage{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return types.ConversationMessage{}, types.ErrSessionNotFound
	}
	session.History = append(session.History, msg)
	session.UpdatedAt = msg.Timestamp
	return msg, nil
}

func copySession(s *types.ChatSession) *types.ChatSession {
	out := *s
	out.History = make([]types.ConversationMessage, len(s.History))
	copy(out.History, s.History)
	return &out
}
