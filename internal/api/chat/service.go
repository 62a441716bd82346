package chat

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/gangwonlab/tour-concierge/app/observability/metrics"
	"github.com/gangwonlab/tour-concierge/internal/api/rag"
	"github.com/gangwonlab/tour-concierge/internal/types"
)

// ChatModel is the completion side of the generative AI client.
type ChatModel interface {
	GenerateWithHistory(ctx context.Context, system string, history []*genai.Content, message string) (string, error)
	StreamWithHistory(ctx context.Context, system string, history []*genai.Content, message string) (iter.Seq2[*genai.GenerateContentResponse, error], error)
}

// Retriever supplies grounding context for a user message.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]rag.ScoredSegment, error)
}

// Service orchestrates one conversation turn: persist the user message,
// retrieve context, call the model with the full history, persist the
// reply. A failure after the user append leaves the orphaned user turn in
// history; the next successful turn carries it to the model.
type Service struct {
	repo      *Repository
	model     ChatModel
	retriever Retriever
	logger    *slog.Logger
}

func NewService(repo *Repository, model ChatModel, retriever Retriever, logger *slog.Logger) *Service {
	return &Service{repo: repo, model: model, retriever: retriever, logger: logger}
}

func (s *Service) NewSession(ctx context.Context) *types.ChatSession {
	session := s.repo.Create(ctx)
	s.logger.InfoContext(ctx, "Chat session created", slog.String("session_id", session.ID.String()))
	return session
}

func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*types.ChatSession, error) {
	return s.repo.Get(ctx, id)
}

// SendMessage runs one blocking turn.
func (s *Service) SendMessage(ctx context.Context, sessionID uuid.UUID, message string) (*types.ChatResponse, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "SendMessage")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID.String()))
	metrics.Get().ChatTurnsTotal.Add(ctx, 1)

	system, history, err := s.prepareTurn(ctx, sessionID, message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to prepare turn")
		s.recordTurnError(ctx, err)
		return nil, err
	}

	reply, err := s.model.GenerateWithHistory(ctx, system, history, message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		s.recordTurnError(ctx, err)
		return nil, fmt.Errorf("%w: %v", types.ErrServiceUnavailable, err)
	}

	if _, err := s.repo.Append(ctx, sessionID, types.RoleAssistant, reply); err != nil {
		span.RecordError(err)
		s.recordTurnError(ctx, err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "Turn complete")
	return &types.ChatResponse{SessionID: sessionID, Message: reply}, nil
}

// SendMessageStream runs one streaming turn. Events arrive on the returned
// channel; a mid-stream error discards the partial text and the terminal
// event carries the error instead.
func (s *Service) SendMessageStream(ctx context.Context, sessionID uuid.UUID, message string) (<-chan types.StreamEvent, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "SendMessageStream")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID.String()))
	metrics.Get().ChatTurnsTotal.Add(ctx, 1)

	system, history, err := s.prepareTurn(ctx, sessionID, message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to prepare turn")
		s.recordTurnError(ctx, err)
		return nil, err
	}

	events := make(chan types.StreamEvent, 32)
	go s.streamTurn(ctx, sessionID, system, history, message, events)
	span.SetStatus(codes.Ok, "Stream started")
	return events, nil
}

// prepareTurn appends the user message and assembles the model input. The
// user append happens before retrieval on purpose: the session keeps the
// question even when the turn fails afterwards.
func (s *Service) prepareTurn(ctx context.Context, sessionID uuid.UUID, message string) (string, []*genai.Content, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}
	if _, err := s.repo.Append(ctx, sessionID, types.RoleUser, message); err != nil {
		return "", nil, err
	}

	segments, err := s.retriever.Retrieve(ctx, message)
	if err != nil {
		return "", nil, err
	}

	return systemPrompt(segments), toGenaiHistory(session.History), nil
}

func (s *Service) streamTurn(ctx context.Context, sessionID uuid.UUID, system string, history []*genai.Content, message string, events chan<- types.StreamEvent) {
	defer close(events)

	events <- newEvent(types.EventTypeProgress, "답변을 생성하고 있습니다...")

	stream, err := s.model.StreamWithHistory(ctx, system, history, message)
	if err != nil {
		s.recordTurnError(ctx, err)
		events <- errorEvent(err)
		return
	}

	var full strings.Builder
	for resp, err := range stream {
		if err != nil {
			// Partial text is never persisted.
			s.recordTurnError(ctx, err)
			events <- errorEvent(err)
			return
		}
		chunk := resp.Text()
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)
		select {
		case events <- newEvent(types.EventTypeChunk, chunk):
		case <-ctx.Done():
			return
		}
	}

	reply := full.String()
	if _, err := s.repo.Append(ctx, sessionID, types.RoleAssistant, reply); err != nil {
		s.recordTurnError(ctx, err)
		events <- errorEvent(err)
		return
	}

	done := newEvent(types.EventTypeComplete, reply)
	done.IsFinal = true
	events <- done
}

func (s *Service) recordTurnError(ctx context.Context, err error) {
	metrics.Get().ChatTurnErrorsTotal.Add(ctx, 1)
	s.logger.ErrorContext(ctx, "Chat turn failed", slog.Any("error", err))
}

func newEvent(eventType string, data interface{}) types.StreamEvent {
	return types.StreamEvent{
		Type:      eventType,
		Data:      data,
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
	}
}

func errorEvent(err error) types.StreamEvent {
	event := types.StreamEvent{
		Type:      types.EventTypeError,
		Error:     err.Error(),
		IsFinal:   true,
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
	}
	return event
}

// toGenaiHistory converts the stored history into role-tagged contents.
// The current user message is sent separately by the SDK chat API, so the
// history covers every prior turn only.
func toGenaiHistory(history []types.ConversationMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := genai.Role(genai.RoleUser)
		if msg.Role == types.RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(msg.Content, role))
	}
	return out
}

// systemPrompt mirrors the concierge instruction set with the retrieved
// context inlined.
func systemPrompt(segments []rag.ScoredSegment) string {
	var contextBlock strings.Builder
	if len(segments) == 0 {
		contextBlock.WriteString("(관련 리뷰 데이터 없음)")
	}
	for _, seg := range segments {
		contextBlock.WriteString(seg.Text)
		contextBlock.WriteString("\n---\n")
	}

	return fmt.Sprintf(`당신은 강원도 관광 및 숙박 전문 AI 컨시어지입니다.

**반드시 포함해야 할 정보:**
1. 가격 정보 (가장 중요!)
2. 위치 및 거리 정보
3. 객실 타입 및 수용 인원
4. 식사 포함 여부
5. 주차 가능 여부
6. 청결도 및 시설 정보
7. 최근 예약 사례

**컨텍스트:**
%s

**답변 가이드라인:**
- 숙소 추천 시: 가격(필수), 위치, 객실 타입, 식사, 주차, 청결도 점수를 모두 포함
- 맛집 추천 시: 가격대, 위치, 주차 정보, 운영 시간, 인기 메뉴 포함
- 여행 코스: 동선을 고려한 효율적인 일정, 이동 거리와 시간 명시
- 견적: 구체적인 금액과 항목별 비용 분석
- 출처: 리뷰 데이터 또는 실제 예약 사례 기반임을 명시

**응답 형식:**
- 요청에 맞는 구체적 정보 제공
- 가격은 반드시 명시 (예: 120,000원/박)
- 거리는 km + 이동 시간 표시 (예: 5km, 차로 10분)
- 신뢰도 향상을 위해 최근 예약 건수나 리뷰 점수 언급`, contextBlock.String())
}
