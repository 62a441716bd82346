package rag

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gangwonlab/tour-concierge/app/observability/metrics"
	"github.com/gangwonlab/tour-concierge/internal/types"
)

// Embedder is the vector side of the generative AI client.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// IndexedSegment is one embedded chunk of a document.
type IndexedSegment struct {
	DocID     string         `json:"doc_id"`
	PlaceName string         `json:"place_name"`
	Category  types.Category `json:"category"`
	Text      string         `json:"text"`
	Vector    []float32      `json:"-"`
}

// ScoredSegment pairs a segment with its similarity to a query.
type ScoredSegment struct {
	IndexedSegment
	Score float64 `json:"score"`
}

// Index holds embedded segments for in-memory similarity search. Segments
// keep their insertion order, which breaks score ties deterministically.
type Index struct {
	segments []IndexedSegment
}

func (ix *Index) Len() int { return len(ix.segments) }

// Search returns the k segments most similar to the query vector, ordered
// by descending cosine similarity with insertion order breaking ties.
func (ix *Index) Search(query []float32, k int) []ScoredSegment {
	scored := make([]ScoredSegment, len(ix.segments))
	for i, seg := range ix.segments {
		scored[i] = ScoredSegment{IndexedSegment: seg, Score: cosineSimilarity(query, seg.Vector)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Service builds indexes over composed documents and answers retrieval
// queries. Index builds are memoized in go-cache by corpus fingerprint,
// embedding model and category focus, so repeated queries with the same
// focus reuse the embeddings.
type Service struct {
	embedder  Embedder
	composer  *Composer
	splitter  *Splitter
	model     string
	topK      int
	batchSize int
	indexes   *cache.Cache
	logger    *slog.Logger
}

func NewService(embedder Embedder, composer *Composer, splitter *Splitter, model string, topK, batchSize int, logger *slog.Logger) *Service {
	if topK <= 0 {
		topK = 5
	}
	if batchSize <= 0 {
		batchSize = 30
	}
	return &Service{
		embedder:  embedder,
		composer:  composer,
		splitter:  splitter,
		model:     model,
		topK:      topK,
		batchSize: batchSize,
		indexes:   cache.New(cache.NoExpiration, cache.NoExpiration),
		logger:    logger,
	}
}

// Retrieve composes the query-focused corpus, builds (or reuses) its index
// and returns the top segments for the query.
func (s *Service) Retrieve(ctx context.Context, query string) ([]ScoredSegment, error) {
	ctx, span := otel.Tracer("RAGService").Start(ctx, "Retrieve")
	defer span.End()
	started := time.Now()

	docs, cacheKey, err := s.composer.QueryDocuments(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to compose documents")
		return nil, err
	}
	if len(docs) == 0 {
		span.SetStatus(codes.Ok, "Empty corpus")
		return nil, nil
	}

	index, err := s.indexFor(ctx, cacheKey, docs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to build index")
		return nil, err
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query embedding failed")
		return nil, fmt.Errorf("%w: embedding query: %v", types.ErrServiceUnavailable, err)
	}

	results := index.Search(queryVec, s.topK)
	span.SetAttributes(
		attribute.Int("index.segments", index.Len()),
		attribute.Int("results", len(results)),
	)
	span.SetStatus(codes.Ok, "Retrieval complete")
	metrics.Get().RetrievalDurationSeconds.Record(ctx, time.Since(started).Seconds())
	return results, nil
}

func (s *Service) indexFor(ctx context.Context, cacheKey string, docs []Document) (*Index, error) {
	key := fmt.Sprintf("%s|%s", cacheKey, s.model)
	if cached, ok := s.indexes.Get(key); ok {
		return cached.(*Index), nil
	}

	index, err := s.build(ctx, docs)
	if err != nil {
		return nil, err
	}
	s.indexes.Set(key, index, cache.NoExpiration)
	s.logger.InfoContext(ctx, "Vector index built",
		slog.String("key", key),
		slog.Int("documents", len(docs)),
		slog.Int("segments", index.Len()))
	return index, nil
}

// build splits the documents and embeds the segments in batches.
func (s *Service) build(ctx context.Context, docs []Document) (*Index, error) {
	var segments []IndexedSegment
	for _, doc := range docs {
		for _, text := range s.splitter.Split(doc.Text) {
			segments = append(segments, IndexedSegment{
				DocID:     doc.ID,
				PlaceName: doc.PlaceName,
				Category:  doc.Category,
				Text:      text,
			})
		}
	}

	for start := 0; start < len(segments); start += s.batchSize {
		end := start + s.batchSize
		if end > len(segments) {
			end = len(segments)
		}
		texts := make([]string, end-start)
		for i := start; i < end; i++ {
			texts[i-start] = segments[i].Text
		}
		vectors, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: embedding segment batch: %v", types.ErrServiceUnavailable, err)
		}
		for i, vec := range vectors {
			segments[start+i].Vector = vec
		}
	}
	return &Index{segments: segments}, nil
}
