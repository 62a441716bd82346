package rag

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gangwonlab/tour-concierge/internal/types"
)

// fakeEmbedder maps each distinct text to a fixed unit vector so retrieval
// results are a pure function of the input.
type fakeEmbedder struct {
	docCalls   int
	queryCalls int
	failDocs   bool
	failQuery  bool
}

func (f *fakeEmbedder) vector(text string) []float32 {
	var a, b float32
	for i, r := range text {
		a += float32(r%97) / 97
		b += float32((r+int32(i))%89) / 89
	}
	return []float32{a, b, 1}
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.docCalls++
	if f.failDocs {
		return nil, errors.New("quota exceeded")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.vector(text)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, query string) ([]float32, error) {
	f.queryCalls++
	if f.failQuery {
		return nil, errors.New("quota exceeded")
	}
	return f.vector(query), nil
}

type fakeStats struct {
	stats map[string]*types.PlaceStats
}

func (f *fakeStats) Stats(context.Context) (map[string]*types.PlaceStats, error) {
	return f.stats, nil
}

func (f *fakeStats) Fingerprint() string { return "test-corpus" }

type emptyCatalog struct{}

func (emptyCatalog) Accommodations() []types.Accommodation { return nil }
func (emptyCatalog) Restaurants() []types.Restaurant       { return nil }
func (emptyCatalog) Attractions() []types.Attraction       { return nil }

func testStats() *fakeStats {
	return &fakeStats{stats: map[string]*types.PlaceStats{
		"막국수집": {
			Category: types.CategoryRestaurant, TotalReviews: 5, RevisitRate: 60,
			Representative: []types.Review{{Content: "막국수가 시원하고 맛있어요"}},
		},
		"해변카페": {
			Category: types.CategoryCafe, TotalReviews: 4, RevisitRate: 50,
			Representative: []types.Review{{Content: "바다가 보이는 카페"}},
		},
		"경포해변": {
			Category: types.CategoryAttraction, TotalReviews: 6, RevisitRate: 30,
			Representative: []types.Review{{Content: "산책하기 좋아요"}},
		},
	}}
}

func newTestService(embedder *fakeEmbedder) *Service {
	composer := NewComposer(testStats(), emptyCatalog{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(embedder, composer, NewSplitter(500, 50), "fake-model", 5, 30, logger)
}

func TestRetrieveIdempotent(t *testing.T) {
	embedder := &fakeEmbedder{}
	svc := newTestService(embedder)
	ctx := context.Background()

	first, err := svc.Retrieve(ctx, "맛집 추천해줘")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := svc.Retrieve(ctx, "맛집 추천해줘")
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].DocID, second[i].DocID)
		assert.InDelta(t, first[i].Score, second[i].Score, 1e-9)
	}
}

func TestRetrieveReusesIndex(t *testing.T) {
	embedder := &fakeEmbedder{}
	svc := newTestService(embedder)
	ctx := context.Background()

	_, err := svc.Retrieve(ctx, "맛집 어디가 좋아")
	require.NoError(t, err)
	builds := embedder.docCalls

	_, err = svc.Retrieve(ctx, "다른 맛집도 알려줘")
	require.NoError(t, err)
	assert.Equal(t, builds, embedder.docCalls,
		"same category focus must reuse the cached index")
	assert.Equal(t, 2, embedder.queryCalls)
}

func TestRetrieveCategoryFocus(t *testing.T) {
	svc := newTestService(&fakeEmbedder{})

	results, err := svc.Retrieve(context.Background(), "카페 추천")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, types.CategoryCafe, r.Category)
	}
}

func TestRetrieveNoFocusReachesCatalog(t *testing.T) {
	catalog := staticCatalog{
		accommodations: []types.Accommodation{{
			Name: "씨마크 호텔", Category: "호텔", Location: "강릉",
			PricePerNight: map[string]int{"스탠다드": 300000},
			Rating:        4.8, Facilities: []string{"주차장"},
		}},
	}
	composer := NewComposer(testStats(), catalog)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(&fakeEmbedder{}, composer, NewSplitter(500, 50), "fake-model", 10, 30, logger)

	results, err := svc.Retrieve(context.Background(), "숙소 가격 알려줘")
	require.NoError(t, err)
	require.NotEmpty(t, results)

	found := false
	for _, r := range results {
		if strings.Contains(r.Text, "씨마크 호텔") {
			found = true
		}
	}
	assert.True(t, found, "an accommodation query must retrieve the catalog entry")
}

func TestRetrieveEmbeddingFailure(t *testing.T) {
	svc := newTestService(&fakeEmbedder{failDocs: true})

	_, err := svc.Retrieve(context.Background(), "맛집")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrServiceUnavailable)
}

func TestRetrieveQueryEmbeddingFailure(t *testing.T) {
	svc := newTestService(&fakeEmbedder{failQuery: true})

	_, err := svc.Retrieve(context.Background(), "맛집")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrServiceUnavailable)
}

func TestIndexSearchOrderAndBounds(t *testing.T) {
	ix := &Index{segments: []IndexedSegment{
		{DocID: "a", Vector: []float32{1, 0}},
		{DocID: "b", Vector: []float32{0.9, 0.1}},
		{DocID: "c", Vector: []float32{0, 1}},
	}}

	results := ix.Search([]float32{1, 0}, 2)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].DocID)
	assert.Equal(t, "b", results[1].DocID)

	all := ix.Search([]float32{1, 0}, 10)
	assert.Len(t, all, 3, "k beyond index size returns everything")
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 2}), "dimension mismatch")
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}), "zero vector")
}
