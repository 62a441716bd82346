package generativeai

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/gangwonlab/tour-concierge/internal/types"
)

const (
	taskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	taskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// EmbeddingService generates dense vectors for retrieval. Documents and
// queries use asymmetric task types so the two sides of the similarity
// search embed into compatible spaces.
type EmbeddingService struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewEmbeddingService(ctx context.Context, apiKey, model string, logger *slog.Logger) (*EmbeddingService, error) {
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
	return &EmbeddingService{client: client, model: model, logger: logger}, nil
}

// EmbedDocuments embeds one batch of corpus segments. Callers are expected
// to chunk their input; the Gemini API caps the batch size well below any
// realistic corpus.
func (s *EmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, span := otel.Tracer("EmbeddingService").Start(ctx, "EmbedDocuments")
	defer span.End()
	span.SetAttributes(attribute.Int("batch.size", len(texts)))

	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	resp, err := s.client.Models.EmbedContent(ctx, s.model, contents, &genai.EmbedContentConfig{
		TaskType: taskRetrievalDocument,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Embedding batch failed")
		return nil, fmt.Errorf("embedding %d documents: %w", len(texts), err)
	}
	if len(resp.Embeddings) != len(texts) {
		err := fmt.Errorf("embedding count mismatch: sent %d, got %d", len(texts), len(resp.Embeddings))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Embedding count mismatch")
		return nil, err
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}
	span.SetStatus(codes.Ok, "Batch embedded")
	return vectors, nil
}

// EmbedQuery embeds a single search query.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	ctx, span := otel.Tracer("EmbeddingService").Start(ctx, "EmbedQuery")
	defer span.End()

	resp, err := s.client.Models.EmbedContent(ctx, s.model,
		[]*genai.Content{genai.NewContentFromText(query, genai.RoleUser)},
		&genai.EmbedContentConfig{TaskType: taskRetrievalQuery})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query embedding failed")
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		err := fmt.Errorf("no embedding returned for query")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Empty embedding response")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Query embedded")
	return resp.Embeddings[0].Values, nil
}
