package itinerary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gangwonlab/tour-concierge/internal/types"
)

type fixedStats map[string]*types.PlaceStats

func (f fixedStats) Stats(context.Context) (map[string]*types.PlaceStats, error) {
	return f, nil
}

func richStats() fixedStats {
	stats := make(fixedStats)
	add := func(prefix string, cat types.Category, count int) {
		for i := range count {
			name := fmt.Sprintf("%s%d", prefix, i)
			stats[name] = &types.PlaceStats{
				Category:     cat,
				TotalReviews: 5,
				RevisitRate:  float64(100 - i),
				PositiveRate: float64(90 - i),
			}
		}
	}
	add("식당", types.CategoryRestaurant, 12)
	add("관광지", types.CategoryAttraction, 12)
	add("카페", types.CategoryCafe, 12)
	return stats
}

func newTestService(stats fixedStats) *Service {
	return NewService(stats, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEstimateTripCostStandard(t *testing.T) {
	est := EstimateTripCost("2박 3일", 4, "standard")

	assert.Equal(t, 2, est.Nights)
	assert.Equal(t, 3, est.Days)
	assert.Equal(t, 300000, est.Accommodation)
	assert.Equal(t, 360000, est.Meals)
	assert.Equal(t, 180000, est.Attractions)
	assert.Equal(t, 200000, est.Transportation)
	assert.Equal(t, 1040000, est.Total)
	assert.Equal(t, 260000, est.PerPerson)
}

func TestEstimateTripCostTiers(t *testing.T) {
	assert.Equal(t, 80000, EstimateTripCost("1박 2일", 1, "budget").Accommodation)
	assert.Equal(t, 300000, EstimateTripCost("1박 2일", 1, "luxury").Accommodation)
	assert.Equal(t, 150000, EstimateTripCost("1박 2일", 1, "standard").Accommodation)
}

func TestEstimateTripCostDurationParsing(t *testing.T) {
	assert.Equal(t, 3, EstimateTripCost("3박 4일", 2, "budget").Nights)
	// No night marker falls back to a single night.
	assert.Equal(t, 1, EstimateTripCost("당일치기", 2, "budget").Nights)
	// People floor prevents division by zero.
	est := EstimateTripCost("1박 2일", 0, "budget")
	assert.Equal(t, est.Total, est.PerPerson)
}

func TestGenerateSeededDeterministic(t *testing.T) {
	svc := newTestService(richStats())
	ctx := context.Background()
	req := types.ItineraryRequest{Duration: "2박 3일", Priority: types.PriorityRevisitRate}

	first, err := svc.Generate(ctx, req, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	second, err := svc.Generate(ctx, req, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	require.Len(t, first.Days, 3)
	assert.Equal(t, first, second, "same seed must reproduce the schedule")
}

func TestGenerateSeedsVary(t *testing.T) {
	svc := newTestService(richStats())
	ctx := context.Background()
	req := types.ItineraryRequest{Duration: "2박 3일", Priority: types.PriorityNone}

	a, err := svc.Generate(ctx, req, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	varied := false
	for seed := int64(2); seed < 12; seed++ {
		b, err := svc.Generate(ctx, req, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		if !assert.ObjectsAreEqual(a, b) {
			varied = true
			break
		}
	}
	assert.True(t, varied, "different seeds should eventually differ")
}

func TestGenerateNeverRepeatsPlaces(t *testing.T) {
	svc := newTestService(richStats())
	itinerary, err := svc.Generate(context.Background(),
		types.ItineraryRequest{Duration: "3박 4일"},
		rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, day := range itinerary.Days {
		for _, act := range day.Activities {
			assert.False(t, seen[act.Place], "place %s appears twice", act.Place)
			seen[act.Place] = true
		}
	}
}

func TestGenerateDayTemplate(t *testing.T) {
	svc := newTestService(richStats())
	itinerary, err := svc.Generate(context.Background(),
		types.ItineraryRequest{Duration: "1박 2일"},
		rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	require.Len(t, itinerary.Days, 2)

	dayOne := itinerary.Days[0]
	require.NotEmpty(t, dayOne.Activities)
	assert.NotEqual(t, "09:00", dayOne.Activities[0].Time, "no morning cafe on arrival day")

	dayTwo := itinerary.Days[1]
	require.NotEmpty(t, dayTwo.Activities)
	assert.Equal(t, "09:00", dayTwo.Activities[0].Time)
	assert.Equal(t, types.CategoryCafe, dayTwo.Activities[0].Category)

	// The final day never schedules the afternoon slots.
	for _, act := range dayTwo.Activities {
		assert.NotEqual(t, "14:30", act.Time)
		assert.NotEqual(t, "16:30", act.Time)
	}
}

func TestGenerateExhaustedPoolOmitsSlot(t *testing.T) {
	stats := fixedStats{
		"유일한식당": {Category: types.CategoryRestaurant, TotalReviews: 5, RevisitRate: 50},
	}
	svc := newTestService(stats)

	itinerary, err := svc.Generate(context.Background(),
		types.ItineraryRequest{Duration: "1박 2일", Categories: []types.Category{types.CategoryRestaurant}},
		rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	total := 0
	for _, day := range itinerary.Days {
		total += len(day.Activities)
	}
	assert.Equal(t, 1, total, "a single candidate fills exactly one slot")
}

func TestGenerateNoCandidates(t *testing.T) {
	svc := newTestService(fixedStats{})
	_, err := svc.Generate(context.Background(),
		types.ItineraryRequest{Duration: "1박 2일"},
		rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, types.ErrNoCandidates)
}

func TestRenderPackageText(t *testing.T) {
	packages, err := Packages()
	require.NoError(t, err)
	require.Len(t, packages, 2)

	text := RenderPackageText(packages[0])
	assert.Contains(t, text, "## 춘천 1박 2일 가족 여행")
	assert.Contains(t, text, "### Day 1")
	assert.Contains(t, text, "**총 비용**: 504,000원 (1인당 126,000원)")
	assert.Contains(t, text, "- **10:00** | 남이섬 도착 - 64,000원 (입장료 포함)")
	assert.Contains(t, text, "- **08:00** | 호텔 조식 - 무료 (숙박 포함)")
	assert.Contains(t, text, "**포함 사항**: 숙박(조식 포함), 입장료, 식사 3회")
	assert.Contains(t, text, "**불포함 사항**: 개인 경비, 교통비, 간식비")
}
