package chat

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/gangwonlab/tour-concierge/internal/api/rag"
	"github.com/gangwonlab/tour-concierge/internal/types"
)

type fakeModel struct {
	reply        string
	err          error
	chunks       []string
	streamErrAt  int // emit an error after this many chunks; -1 disables
	lastHistory  []*genai.Content
	lastSystem   string
	lastMessage  string
	generateHits int
}

func (f *fakeModel) GenerateWithHistory(_ context.Context, system string, history []*genai.Content, message string) (string, error) {
	f.generateHits++
	f.lastSystem = system
	f.lastHistory = history
	f.lastMessage = message
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeModel) StreamWithHistory(_ context.Context, system string, history []*genai.Content, message string) (iter.Seq2[*genai.GenerateContentResponse, error], error) {
	f.lastSystem = system
	f.lastHistory = history
	f.lastMessage = message
	if f.err != nil {
		return nil, f.err
	}
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for i, chunk := range f.chunks {
			if f.streamErrAt >= 0 && i == f.streamErrAt {
				yield(nil, errors.New("stream interrupted"))
				return
			}
			resp := &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: genai.NewContentFromText(chunk, genai.RoleModel),
				}},
			}
			if !yield(resp, nil) {
				return
			}
		}
	}, nil
}

type fakeRetriever struct {
	segments []rag.ScoredSegment
	err      error
	queries  []string
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string) ([]rag.ScoredSegment, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.segments, nil
}

func newTestChat(model *fakeModel, retriever *fakeRetriever) (*Service, *Repository) {
	repo := NewRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, model, retriever, logger), repo
}

func countRoles(history []types.ConversationMessage) (users, assistants int) {
	for _, msg := range history {
		switch msg.Role {
		case types.RoleUser:
			users++
		case types.RoleAssistant:
			assistants++
		}
	}
	return
}

func TestSendMessagePersistsBothTurns(t *testing.T) {
	model := &fakeModel{reply: "막국수집을 추천합니다", streamErrAt: -1}
	retriever := &fakeRetriever{segments: []rag.ScoredSegment{
		{IndexedSegment: rag.IndexedSegment{Text: "[맛집] 막국수집"}, Score: 0.9},
	}}
	svc, _ := newTestChat(model, retriever)
	ctx := context.Background()

	session := svc.NewSession(ctx)
	resp, err := svc.SendMessage(ctx, session.ID, "맛집 추천해줘")
	require.NoError(t, err)
	assert.Equal(t, "막국수집을 추천합니다", resp.Message)

	stored, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	users, assistants := countRoles(stored.History)
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, assistants)

	// Retrieval runs on the user message and its context reaches the model.
	require.Equal(t, []string{"맛집 추천해줘"}, retriever.queries)
	assert.Contains(t, model.lastSystem, "[맛집] 막국수집")
	assert.Empty(t, model.lastHistory, "first turn has no prior history")
	assert.Equal(t, "맛집 추천해줘", model.lastMessage)
}

func TestSendMessageFailureKeepsUserTurn(t *testing.T) {
	model := &fakeModel{err: errors.New("model down"), streamErrAt: -1}
	svc, _ := newTestChat(model, &fakeRetriever{})
	ctx := context.Background()

	session := svc.NewSession(ctx)
	_, err := svc.SendMessage(ctx, session.ID, "안녕")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrServiceUnavailable)

	stored, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	users, assistants := countRoles(stored.History)
	assert.Equal(t, 1, users, "the question stays in history")
	assert.Equal(t, 0, assistants, "no assistant entry for a failed turn")
}

func TestSendMessageRetrievalFailure(t *testing.T) {
	retriever := &fakeRetriever{err: types.ErrServiceUnavailable}
	model := &fakeModel{reply: "unused", streamErrAt: -1}
	svc, _ := newTestChat(model, retriever)
	ctx := context.Background()

	session := svc.NewSession(ctx)
	_, err := svc.SendMessage(ctx, session.ID, "안녕")
	require.Error(t, err)
	assert.Zero(t, model.generateHits, "retrieval always precedes the model call")
}

func TestSendMessageUnknownSession(t *testing.T) {
	svc, _ := newTestChat(&fakeModel{streamErrAt: -1}, &fakeRetriever{})
	_, err := svc.SendMessage(context.Background(), uuid.New(), "안녕")
	assert.ErrorIs(t, err, types.ErrSessionNotFound)
}

func TestSendMessageHistoryAccumulates(t *testing.T) {
	model := &fakeModel{reply: "답변", streamErrAt: -1}
	svc, _ := newTestChat(model, &fakeRetriever{})
	ctx := context.Background()

	session := svc.NewSession(ctx)
	_, err := svc.SendMessage(ctx, session.ID, "첫 질문")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, session.ID, "두 번째 질문")
	require.NoError(t, err)

	// Second turn sees the first question and answer, not its own message.
	require.Len(t, model.lastHistory, 2)
	assert.Equal(t, "두 번째 질문", model.lastMessage)
}

func TestStreamCompletePersistsConcatenation(t *testing.T) {
	model := &fakeModel{chunks: []string{"막국수집", "을 추천", "합니다"}, streamErrAt: -1}
	svc, _ := newTestChat(model, &fakeRetriever{})
	ctx := context.Background()

	session := svc.NewSession(ctx)
	events, err := svc.SendMessageStream(ctx, session.ID, "맛집?")
	require.NoError(t, err)

	var chunks []string
	var final types.StreamEvent
	for event := range events {
		switch event.Type {
		case types.EventTypeChunk:
			chunks = append(chunks, event.Data.(string))
		case types.EventTypeComplete:
			final = event
		}
	}

	assert.Equal(t, []string{"막국수집", "을 추천", "합니다"}, chunks)
	assert.True(t, final.IsFinal)
	assert.Equal(t, "막국수집을 추천합니다", final.Data)

	stored, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	users, assistants := countRoles(stored.History)
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, assistants)
	assert.Equal(t, "막국수집을 추천합니다", stored.History[len(stored.History)-1].Content)
}

func TestStreamErrorDiscardsPartialText(t *testing.T) {
	model := &fakeModel{chunks: []string{"부분", "응답"}, streamErrAt: 1}
	svc, _ := newTestChat(model, &fakeRetriever{})
	ctx := context.Background()

	session := svc.NewSession(ctx)
	events, err := svc.SendMessageStream(ctx, session.ID, "질문")
	require.NoError(t, err)

	var sawError bool
	for event := range events {
		if event.Type == types.EventTypeError {
			sawError = true
			assert.True(t, event.IsFinal)
		}
	}
	require.True(t, sawError)

	stored, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	users, assistants := countRoles(stored.History)
	assert.Equal(t, 1, users)
	assert.Equal(t, 0, assistants, "partial text must not be persisted")
}
