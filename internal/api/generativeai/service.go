package generativeai

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/gangwonlab/tour-concierge/internal/types"
)

// AIClient wraps the Gemini SDK for chat completion. Construction fails
// with types.ErrNotConfigured when no credential was resolved, so callers
// can keep the rest of the service running without a key.
type AIClient struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

func NewAIClient(ctx context.Context, apiKey, model string, temperature float32, logger *slog.Logger) (*AIClient, error) {
	if apiKey == "" {
		return nil, types.ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &AIClient{
		client:      client,
		model:       model,
		temperature: temperature,
		logger:      logger,
	}, nil
}

// GenerateWithHistory sends one user message over the prior conversation
// and returns the full model reply.
func (ai *AIClient) GenerateWithHistory(ctx context.Context, system string, history []*genai.Content, message string) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateWithHistory", trace.WithAttributes(
		attribute.String("model", ai.model),
		attribute.Int("history.turns", len(history)),
	))
	defer span.End()

	chat, err := ai.client.Chats.Create(ctx, ai.model, ai.generateConfig(system), history)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create chat")
		return "", fmt.Errorf("failed to create chat: %w", err)
	}

	result, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		return "", fmt.Errorf("sending message: %w", err)
	}

	span.SetStatus(codes.Ok, "Content generated")
	return result.Text(), nil
}

// StreamWithHistory initiates a streaming reply over the prior conversation.
func (ai *AIClient) StreamWithHistory(ctx context.Context, system string, history []*genai.Content, message string) (iter.Seq2[*genai.GenerateContentResponse, error], error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "StreamWithHistory", trace.WithAttributes(
		attribute.String("model", ai.model),
		attribute.Int("history.turns", len(history)),
	))
	defer span.End()

	chat, err := ai.client.Chats.Create(ctx, ai.model, ai.generateConfig(system), history)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create chat for stream")
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	span.SetStatus(codes.Ok, "Content stream initiated")
	return chat.SendMessageStream(ctx, genai.Part{Text: message}), nil
}

func (ai *AIClient) generateConfig(system string) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](ai.temperature),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	return config
}
