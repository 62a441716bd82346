package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gangwonlab/tour-concierge/internal/types"
)

// Service exposes the analytics over the loaded corpus. Statistics are a
// pure function of the corpus, so they are computed once per process and
// reused.
type Service interface {
	Corpus(ctx context.Context) (map[types.Category][]types.Review, error)
	Stats(ctx context.Context) (map[string]*types.PlaceStats, error)
	TopPlaces(ctx context.Context, category types.Category, sortKey string, limit int) ([]types.RankedPlace, error)
	Fingerprint() string
}

type ServiceImpl struct {
	repo   *Repository
	logger *slog.Logger

	mu    sync.Mutex
	stats map[string]*types.PlaceStats
}

func NewService(repo *Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{repo: repo, logger: logger}
}

func (s *ServiceImpl) Corpus(ctx context.Context) (map[types.Category][]types.Review, error) {
	corpus, warnings, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading review corpus: %w", err)
	}
	for _, w := range warnings {
		s.logger.WarnContext(ctx, "Review ingestion warning", slog.String("warning", w))
	}
	return corpus, nil
}

func (s *ServiceImpl) Stats(ctx context.Context) (map[string]*types.PlaceStats, error) {
	ctx, span := otel.Tracer("ReviewService").Start(ctx, "Stats")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats != nil {
		return s.stats, nil
	}

	corpus, err := s.Corpus(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load corpus")
		return nil, err
	}
	s.stats = Analyze(corpus)
	span.SetAttributes(attribute.Int("places", len(s.stats)))
	span.SetStatus(codes.Ok, "Statistics computed")
	return s.stats, nil
}

func (s *ServiceImpl) TopPlaces(ctx context.Context, category types.Category, sortKey string, limit int) ([]types.RankedPlace, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return TopPlaces(stats, category, sortKey, limit), nil
}

func (s *ServiceImpl) Fingerprint() string {
	return s.repo.Fingerprint()
}
