package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gangwonlab/tour-concierge/internal/types"
)

const (
	fullModeReviewCap    = 10
	fullModeReviewRunes  = 400
	optimizedPlaceCap    = 15
	optimizedReviewCap   = 2
	optimizedReviewRunes = 150
	optimizedMinReviews  = 3
	documentSeparator    = "\n---\n"
)

// Document is one retrievable unit of corpus text before splitting.
type Document struct {
	ID        string         `json:"id"`
	PlaceName string         `json:"place_name"`
	Category  types.Category `json:"category"`
	Text      string         `json:"text"`
}

// StatsProvider is the slice of the review service the composer needs.
type StatsProvider interface {
	Stats(ctx context.Context) (map[string]*types.PlaceStats, error)
	Fingerprint() string
}

// CatalogProvider supplies the static datasets summarised into full-mode
// documents.
type CatalogProvider interface {
	Accommodations() []types.Accommodation
	Restaurants() []types.Restaurant
	Attractions() []types.Attraction
}

var categoryLabels = map[types.Category]string{
	types.CategoryRestaurant: "맛집",
	types.CategoryAttraction: "관광지",
	types.CategoryHospital:   "병원",
	types.CategoryCafe:       "카페",
}

// queryKeywords routes a user query to a category subset. A query matching
// none of the groups is served from the full corpus.
var queryKeywords = map[types.Category][]string{
	types.CategoryRestaurant: {"맛집", "음식", "식당", "먹", "밥", "메뉴", "해산물", "막국수"},
	types.CategoryCafe:       {"카페", "커피", "디저트", "빵", "베이커리"},
	types.CategoryAttraction: {"관광", "여행", "명소", "볼거리", "구경", "바다", "해변", "해수욕장"},
	types.CategoryHospital:   {"병원", "진료", "아프", "약국", "응급"},
}

// Composer turns review statistics and catalog entries into documents for
// the vector index.
type Composer struct {
	stats   StatsProvider
	catalog CatalogProvider
}

func NewComposer(stats StatsProvider, catalog CatalogProvider) *Composer {
	return &Composer{stats: stats, catalog: catalog}
}

// FullDocuments renders every place in detail plus catalog one-liners.
// Used when no query focus is available.
func (c *Composer) FullDocuments(ctx context.Context) ([]Document, string, error) {
	stats, err := c.stats.Stats(ctx)
	if err != nil {
		return nil, "", err
	}

	docs := make([]Document, 0, len(stats))
	for _, name := range sortedPlaceNames(stats) {
		s := stats[name]
		docs = append(docs, Document{
			ID:        fmt.Sprintf("review:%s:%s", s.Category, name),
			PlaceName: name,
			Category:  s.Category,
			Text:      fullPlaceDocument(name, s),
		})
	}
	docs = append(docs, c.catalogDocuments()...)

	cacheKey := fmt.Sprintf("%s|full", c.stats.Fingerprint())
	return docs, cacheKey, nil
}

// QueryDocuments renders a compact corpus focused on the categories the
// query mentions. A query without any category cue gets the full corpus
// instead, catalog entries included, so questions about accommodation
// prices or facilities still retrieve something answerable. The cache key
// encodes the chosen focus so distinct focuses build distinct indexes.
func (c *Composer) QueryDocuments(ctx context.Context, query string) ([]Document, string, error) {
	cats, focused := inferCategories(query)
	if !focused {
		return c.FullDocuments(ctx)
	}

	stats, err := c.stats.Stats(ctx)
	if err != nil {
		return nil, "", err
	}

	var docs []Document
	for _, cat := range cats {
		ranked := topByRevisit(stats, cat)
		for _, name := range ranked {
			s := stats[name]
			docs = append(docs, Document{
				ID:        fmt.Sprintf("review:%s:%s", cat, name),
				PlaceName: name,
				Category:  cat,
				Text:      compactPlaceDocument(name, s),
			})
		}
	}

	keys := make([]string, len(cats))
	for i, cat := range cats {
		keys[i] = string(cat)
	}
	cacheKey := fmt.Sprintf("%s|%s", c.stats.Fingerprint(), strings.Join(keys, ","))
	return docs, cacheKey, nil
}

func fullPlaceDocument(name string, s *types.PlaceStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", categoryLabels[s.Category], name)
	fmt.Fprintf(&b, "총 리뷰 %d개, 재방문 %d회 (%.1f%%), 긍정 비율 %.1f%%, 평균 방문 %.1f회\n",
		s.TotalReviews, s.RevisitCount, s.RevisitRate, s.PositiveRate, s.AvgVisitCount)

	// Representative reviews are already longest first.
	n := len(s.Representative)
	if n > fullModeReviewCap {
		n = fullModeReviewCap
	}
	for i := range n {
		b.WriteString("리뷰: ")
		b.WriteString(truncateRunes(s.Representative[i].Content, fullModeReviewRunes))
		b.WriteString(documentSeparator)
	}
	return b.String()
}

func compactPlaceDocument(name string, s *types.PlaceStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", categoryLabels[s.Category], name)
	fmt.Fprintf(&b, "리뷰 %d개, 재방문율 %.1f%%, 긍정 %.1f%%\n", s.TotalReviews, s.RevisitRate, s.PositiveRate)

	n := len(s.Representative)
	if n > optimizedReviewCap {
		n = optimizedReviewCap
	}
	for i := range n {
		fmt.Fprintf(&b, "- %s\n", truncateRunes(s.Representative[i].Content, optimizedReviewRunes))
	}
	return b.String()
}

func (c *Composer) catalogDocuments() []Document {
	var docs []Document
	for _, a := range c.catalog.Accommodations() {
		text := fmt.Sprintf("[숙소] %s (%s, %s): 평점 %.1f, 최저 1박 %s원, 시설: %s",
			a.Name, a.Location, a.Category, a.Rating, formatWon(minPrice(a.PricePerNight)), strings.Join(a.Facilities, ", "))
		docs = append(docs, Document{ID: "catalog:accommodation:" + a.Name, PlaceName: a.Name, Text: text})
	}
	for _, r := range c.catalog.Restaurants() {
		text := fmt.Sprintf("[식당] %s (%s): %s 전문, 인기 메뉴 %s, 1인 평균 %s원",
			r.Name, r.Location, r.Specialty, strings.Join(r.PopularMenu, ", "), formatWon(r.AverageCostPerPerson))
		docs = append(docs, Document{ID: "catalog:restaurant:" + r.Name, PlaceName: r.Name, Category: types.CategoryRestaurant, Text: text})
	}
	for _, at := range c.catalog.Attractions() {
		text := fmt.Sprintf("[관광지] %s (%s): %s, 추천 체류 %s, 운영 %s",
			at.Name, at.Location, at.Category, at.RecommendedDuration, at.OperatingHours)
		docs = append(docs, Document{ID: "catalog:attraction:" + at.Name, PlaceName: at.Name, Category: types.CategoryAttraction, Text: text})
	}
	return docs
}

// inferCategories maps query keywords to a category subset in the fixed
// category order. The second return reports whether any keyword matched;
// without a match the caller falls back to the full corpus.
func inferCategories(query string) ([]types.Category, bool) {
	var cats []types.Category
	for _, cat := range types.AllCategories {
		for _, kw := range queryKeywords[cat] {
			if strings.Contains(query, kw) {
				cats = append(cats, cat)
				break
			}
		}
	}
	if len(cats) == 0 {
		return types.AllCategories, false
	}
	return cats, true
}

// topByRevisit returns the place names of one category ordered by revisit
// rate, ties broken by name, capped at optimizedPlaceCap.
func topByRevisit(stats map[string]*types.PlaceStats, cat types.Category) []string {
	var names []string
	for name, s := range stats {
		if s.Category == cat && s.TotalReviews >= optimizedMinReviews {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		si, sj := stats[names[i]], stats[names[j]]
		if si.RevisitRate != sj.RevisitRate {
			return si.RevisitRate > sj.RevisitRate
		}
		return names[i] < names[j]
	})
	if len(names) > optimizedPlaceCap {
		names = names[:optimizedPlaceCap]
	}
	return names
}

func sortedPlaceNames(stats map[string]*types.PlaceStats) []string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
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

func formatWon(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
