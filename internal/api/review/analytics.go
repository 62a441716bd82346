package review

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gangwonlab/tour-concierge/internal/types"
)

const (
	SortByRevisitRate   = "revisit_rate"
	SortByPositiveRate  = "positive_rate"
	SortByTotalReviews  = "total_reviews"
	SortByAvgVisitCount = "avg_visit_count"
)

const (
	// minReviewsForRanking keeps one-off places out of ranked views.
	minReviewsForRanking = 3
	// representativeCap bounds the reviews kept per place for display and
	// prompt context.
	representativeCap = 10
)

// visitOrderPattern matches the visit index immediately preceding the
// "번째" marker, e.g. "3번째 방문".
var visitOrderPattern = regexp.MustCompile(`(\d{1,2})\s*번째`)

var positiveKeywords = []string{"좋", "맛있", "최고", "친절", "추천", "깨끗", "만족"}

var negativeKeywords = []string{"별로", "실망", "불친절", "아쉬", "더럽", "최악"}

// Analyze aggregates the full review set into per-place statistics. It is a
// pure function of its input: stateless across calls and independent of the
// ordering of rows within a category.
//
// Revisit rule (strict variant): a review counts toward RevisitCount only
// when its marker contains "N번째" with N in [2, 99]. A bare "재방문"
// marker without a numeral does not count; it still contributes 1 to the
// average visit count because the marker is present but unparsable.
func Analyze(reviewsByCategory map[types.Category][]types.Review) map[string]*types.PlaceStats {
	stats := make(map[string]*types.PlaceStats)
	visits := make(map[string][]int)

	for _, cat := range types.AllCategories {
		for _, rev := range reviewsByCategory[cat] {
			s, ok := stats[rev.PlaceName]
			if !ok {
				s = &types.PlaceStats{Category: rev.Category}
				stats[rev.PlaceName] = s
			}
			s.TotalReviews++
			s.Representative = append(s.Representative, rev)

			if containsAny(rev.Content, positiveKeywords) {
				s.PositiveCount++
			}
			if containsAny(rev.Content, negativeKeywords) {
				s.NegativeCount++
			}

			if marker := strings.TrimSpace(rev.RevisitMarker); marker != "" {
				n := parseVisitOrder(marker)
				if n >= 2 {
					s.RevisitCount++
				}
				visits[rev.PlaceName] = append(visits[rev.PlaceName], n)
			}
		}
	}

	for name, s := range stats {
		s.RevisitRate = rate(s.RevisitCount, s.TotalReviews)
		s.PositiveRate = rate(s.PositiveCount, s.TotalReviews)
		s.AvgVisitCount = averageVisits(visits[name])

		// Longest content first; ties keep ingestion order.
		sort.SliceStable(s.Representative, func(i, j int) bool {
			return len(s.Representative[i].Content) > len(s.Representative[j].Content)
		})
		if len(s.Representative) > representativeCap {
			s.Representative = s.Representative[:representativeCap]
		}
	}
	return stats
}

// parseVisitOrder extracts the visit index from a marker. A present but
// unparsable marker counts as a first visit.
func parseVisitOrder(marker string) int {
	m := visitOrderPattern.FindStringSubmatch(marker)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 99 {
		return 1
	}
	return n
}

// averageVisits is the mean of parsed visit indices. Reviews without a
// marker never reach here; a place with no marked review defaults to 1.0.
func averageVisits(orders []int) float64 {
	if len(orders) == 0 {
		return 1.0
	}
	sum := 0
	for _, n := range orders {
		sum += n
	}
	return float64(sum) / float64(len(orders))
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func validSortKey(key string) bool {
	switch key {
	case SortByRevisitRate, SortByPositiveRate, SortByTotalReviews, SortByAvgVisitCount:
		return true
	}
	return false
}

func containsAny(content string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	return false
}

// TopPlaces filters and orders the analytics map for ranked views. Places
// with fewer than minReviewsForRanking reviews are discarded; the rest are
// sorted descending by the requested key (ties broken by place name so the
// ordering is deterministic) and capped at limit. Category "" means all.
func TopPlaces(stats map[string]*types.PlaceStats, category types.Category, sortKey string, limit int) []types.RankedPlace {
	ranked := make([]types.RankedPlace, 0, len(stats))
	for name, s := range stats {
		if s.TotalReviews < minReviewsForRanking {
			continue
		}
		if category != "" && s.Category != category {
			continue
		}
		ranked = append(ranked, types.RankedPlace{Name: name, Stats: s})
	}

	key := func(s *types.PlaceStats) float64 {
		switch sortKey {
		case SortByPositiveRate:
			return s.PositiveRate
		case SortByTotalReviews:
			return float64(s.TotalReviews)
		case SortByAvgVisitCount:
			return s.AvgVisitCount
		default:
			return s.RevisitRate
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ki, kj := key(ranked[i].Stats), key(ranked[j].Stats)
		if ki != kj {
			return ki > kj
		}
		return ranked[i].Name < ranked[j].Name
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
