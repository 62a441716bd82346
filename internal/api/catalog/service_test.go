package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gangwonlab/tour-concierge/internal/types"
)

func newTestCatalog(t *testing.T) *Service {
	t.Helper()
	repo, err := NewRepository()
	require.NoError(t, err)
	return NewService(repo)
}

func names(accs []types.Accommodation) []string {
	out := make([]string, len(accs))
	for i, a := range accs {
		out[i] = a.Name
	}
	return out
}

func TestEmbeddedDatasetsLoad(t *testing.T) {
	svc := newTestCatalog(t)
	assert.Len(t, svc.Accommodations(), 5)
	assert.Len(t, svc.Restaurants(), 4)
	assert.Len(t, svc.Attractions(), 4)
}

func TestFilterByRegion(t *testing.T) {
	svc := newTestCatalog(t)

	results := svc.FilterAccommodations(types.AccommodationFilter{Regions: []string{"강릉"}})
	assert.Equal(t, []string{"강릉씨베이호텔"}, names(results))

	// "전체" short-circuits the region filter.
	results = svc.FilterAccommodations(types.AccommodationFilter{Regions: []string{"전체"}})
	assert.Len(t, results, 5)
}

func TestFilterByPriceRange(t *testing.T) {
	svc := newTestCatalog(t)

	// The cheapest room must land inside [8, 13] 만원.
	results := svc.FilterAccommodations(types.AccommodationFilter{PriceMin: 8, PriceMax: 13})
	assert.ElementsMatch(t, []string{"레이크힐스호텔", "춘천베어스호텔"}, names(results))

	results = svc.FilterAccommodations(types.AccommodationFilter{PriceMin: 30})
	assert.Empty(t, results, "no accommodation starts at 300k or above")
}

func TestFilterByMealAndParking(t *testing.T) {
	svc := newTestCatalog(t)

	results := svc.FilterAccommodations(types.AccommodationFilter{MealIncluded: true})
	for _, acc := range results {
		assert.True(t, acc.Meals.BreakfastIncluded)
	}
	assert.Len(t, results, 3)

	// Every seeded accommodation has parking, so the filter keeps all.
	results = svc.FilterAccommodations(types.AccommodationFilter{ParkingNeeded: true})
	assert.Len(t, results, 5)
}

func TestFilterByRoomType(t *testing.T) {
	svc := newTestCatalog(t)

	results := svc.FilterAccommodations(types.AccommodationFilter{RoomTypes: []string{"ocean_view"}})
	assert.Equal(t, []string{"강릉씨베이호텔"}, names(results))
}

func TestPricesByRegionSortedAscending(t *testing.T) {
	svc := newTestCatalog(t)

	byRegion := svc.PricesByRegion()
	require.Contains(t, byRegion, "춘천시")

	chuncheon := byRegion["춘천시"]
	require.Len(t, chuncheon, 2)
	assert.Equal(t, "춘천베어스호텔", chuncheon[0].Name)
	assert.Equal(t, 80000, chuncheon[0].MinPrice)
	assert.LessOrEqual(t, chuncheon[0].MinPrice, chuncheon[1].MinPrice)
}

func TestPricesByRoomType(t *testing.T) {
	svc := newTestCatalog(t)

	summaries := svc.PricesByRoomType()
	var standard *types.RoomTypePriceSummary
	for i := range summaries {
		if summaries[i].RoomType == "standard" {
			standard = &summaries[i]
		}
	}
	require.NotNil(t, standard)

	// standard appears at 120k, 80k and 180k.
	assert.Equal(t, 80000, standard.Min)
	assert.Equal(t, 180000, standard.Max)
	assert.InDelta(t, (120000+80000+180000)/3.0, standard.Average, 0.001)
}

func TestSeasonOfMonth(t *testing.T) {
	assert.Equal(t, "spring", seasonOf(time.April))
	assert.Equal(t, "summer", seasonOf(time.July))
	assert.Equal(t, "autumn", seasonOf(time.October))
	assert.Equal(t, "winter", seasonOf(time.January))
	assert.Equal(t, "winter", seasonOf(time.December))
}

func TestSeasonalPick(t *testing.T) {
	svc := newTestCatalog(t)

	season, pick := svc.SeasonalPick(time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "summer", season)
	assert.Contains(t, pick.Attractions, "경포해변")
	assert.NotEmpty(t, pick.WeatherTip)
}
