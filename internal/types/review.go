package types

// Category identifies which review corpus a row came from. The corpus is
// organised as one source directory per category.
type Category string

const (
	CategoryRestaurant Category = "restaurant"
	CategoryAttraction Category = "attraction"
	CategoryHospital   Category = "hospital"
	CategoryCafe       Category = "cafe"
)

// AllCategories lists the categories in their ingestion order.
var AllCategories = []Category{CategoryRestaurant, CategoryAttraction, CategoryHospital, CategoryCafe}

func (c Category) Valid() bool {
	switch c {
	case CategoryRestaurant, CategoryAttraction, CategoryHospital, CategoryCafe:
		return true
	}
	return false
}

// Review is one visitor comment, created once at ingestion and immutable
// afterwards. Missing source fields are defaulted by the normalizer, never
// left nil.
type Review struct {
	Category      Category `json:"category"`
	PlaceName     string   `json:"place_name"`
	Date          string   `json:"date"`
	Nickname      string   `json:"nickname"`
	Content       string   `json:"content"`
	RevisitMarker string   `json:"revisit_marker"`
	Reply         string   `json:"reply,omitempty"`
}

// PlaceStats is derived per place from the full review set. It is a pure
// function of the reviews: recomputed wholesale, never mutated in place.
type PlaceStats struct {
	Category       Category `json:"category"`
	TotalReviews   int      `json:"total_reviews"`
	RevisitCount   int      `json:"revisit_count"`
	RevisitRate    float64  `json:"revisit_rate"`
	PositiveCount  int      `json:"positive_count"`
	NegativeCount  int      `json:"negative_count"`
	PositiveRate   float64  `json:"positive_rate"`
	AvgVisitCount  float64  `json:"avg_visit_count"`
	Representative []Review `json:"representative_reviews,omitempty"`
}

// RankedPlace pairs a place name with its stats for ordered views.
type RankedPlace struct {
	Name  string      `json:"name"`
	Stats *PlaceStats `json:"stats"`
}
