package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/gangwonlab/tour-concierge/internal/types"
)

// Service implements the static catalog views: accommodation search, price
// comparison and the seasonal recommendation.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Accommodations() []types.Accommodation { return s.repo.Accommodations() }
func (s *Service) Restaurants() []types.Restaurant       { return s.repo.Restaurants() }
func (s *Service) Attractions() []types.Attraction       { return s.repo.Attractions() }

// FilterAccommodations applies the search criteria. A region list matches
// by substring of the location; the price bounds (in 만원) apply to the
// cheapest room; records without any price are skipped silently.
func (s *Service) FilterAccommodations(filter types.AccommodationFilter) []types.Accommodation {
	var results []types.Accommodation
	for _, acc := range s.repo.Accommodations() {
		if len(acc.PricePerNight) == 0 {
			continue
		}
		if len(filter.Regions) > 0 && !matchesRegion(acc.Location, filter.Regions) {
			continue
		}

		lowest := minPrice(acc.PricePerNight)
		if filter.PriceMin > 0 || filter.PriceMax > 0 {
			lo := filter.PriceMin * 10000
			hi := filter.PriceMax * 10000
			if lowest < lo || (hi > 0 && lowest > hi) {
				continue
			}
		}

		if len(filter.RoomTypes) > 0 && !hasAnyRoomType(acc, filter.RoomTypes) {
			continue
		}
		if filter.MealIncluded && !acc.Meals.BreakfastIncluded {
			continue
		}
		if filter.ParkingNeeded && !hasParking(acc.Facilities) {
			continue
		}
		results = append(results, acc)
	}
	return results
}

func matchesRegion(location string, regions []string) bool {
	for _, region := range regions {
		if region == "전체" || strings.Contains(location, region) {
			return true
		}
	}
	return false
}

func hasAnyRoomType(acc types.Accommodation, wanted []string) bool {
	for _, rt := range wanted {
		if _, ok := acc.RoomTypes[rt]; ok {
			return true
		}
	}
	return false
}

func hasParking(facilities []string) bool {
	for _, f := range facilities {
		if strings.Contains(f, "주차장") {
			return true
		}
	}
	return false
}

// PricesByRegion groups accommodations by the leading word of their
// location and lists each region cheapest first.
func (s *Service) PricesByRegion() map[string][]types.RegionPriceEntry {
	regions := make(map[string][]types.RegionPriceEntry)
	for _, acc := range s.repo.Accommodations() {
		if len(acc.PricePerNight) == 0 {
			continue
		}
		region, _, _ := strings.Cut(acc.Location, " ")
		regions[region] = append(regions[region], types.RegionPriceEntry{
			Name:     acc.Name,
			MinPrice: minPrice(acc.PricePerNight),
			Rating:   acc.Rating,
		})
	}
	for region, entries := range regions {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].MinPrice < entries[j].MinPrice
		})
		regions[region] = entries
	}
	return regions
}

// PricesByRoomType aggregates nightly prices per room-type label across
// every accommodation.
func (s *Service) PricesByRoomType() []types.RoomTypePriceSummary {
	prices := make(map[string][]int)
	for _, acc := range s.repo.Accommodations() {
		for roomType, price := range acc.PricePerNight {
			prices[roomType] = append(prices[roomType], price)
		}
	}

	labels := make([]string, 0, len(prices))
	for label := range prices {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	summaries := make([]types.RoomTypePriceSummary, 0, len(labels))
	for _, label := range labels {
		values := prices[label]
		sum, lowest, highest := 0, values[0], values[0]
		for _, v := range values {
			sum += v
			if v < lowest {
				lowest = v
			}
			if v > highest {
				highest = v
			}
		}
		summaries = append(summaries, types.RoomTypePriceSummary{
			RoomType: label,
			Average:  float64(sum) / float64(len(values)),
			Min:      lowest,
			Max:      highest,
		})
	}
	return summaries
}

// SeasonalPick returns the recommendation block for the month's season.
func (s *Service) SeasonalPick(now time.Time) (string, types.SeasonalPick) {
	season := seasonOf(now.Month())
	pick, _ := s.repo.Seasonal(season)
	return season, pick
}

func seasonOf(month time.Month) string {
	switch {
	case month >= time.March && month <= time.May:
		return "spring"
	case month >= time.June && month <= time.August:
		return "summer"
	case month >= time.September && month <= time.November:
		return "autumn"
	default:
		return "winter"
	}
}

func minPrice(prices map[string]int) int {
	first := true
	lowest := 0
	for _, p := range prices {
		if first || p < lowest {
			lowest = p
			first = false
		}
	}
	return lowest
}
