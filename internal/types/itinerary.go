package types

// ItineraryPriority selects the analytics metric used to rank candidate
// places while building an itinerary.
type ItineraryPriority string

const (
	PriorityRevisitRate  ItineraryPriority = "revisit_rate"
	PriorityPositiveRate ItineraryPriority = "positive_rate"
	PriorityNone         ItineraryPriority = "none"
)

type ItineraryRequest struct {
	Duration   string            `json:"duration"` // e.g. "2박 3일"
	Categories []Category        `json:"categories,omitempty"`
	Priority   ItineraryPriority `json:"priority,omitempty"`
	Seed       *int64            `json:"seed,omitempty"`
}

// Itinerary is the randomized, analytics-driven schedule. A place never
// appears twice across the whole structure.
type Itinerary struct {
	Duration string         `json:"duration"`
	Days     []ItineraryDay `json:"days"`
}

type ItineraryDay struct {
	Day        int        `json:"day"`
	Activities []Activity `json:"activities"`
}

type Activity struct {
	Time     string      `json:"time"`
	Type     string      `json:"type"`
	Place    string      `json:"place"`
	Category Category    `json:"category"`
	Stats    *PlaceStats `json:"stats,omitempty"`
}

// CostEstimate is the deterministic trip-cost breakdown in KRW.
type CostEstimate struct {
	Nights         int `json:"nights"`
	Days           int `json:"days"`
	Accommodation  int `json:"accommodation"`
	Meals          int `json:"meals"`
	Attractions    int `json:"attractions"`
	Transportation int `json:"transportation"`
	Total          int `json:"total"`
	PerPerson      int `json:"per_person"`
}

type CostEstimateRequest struct {
	Duration          string `json:"duration"`
	NumPeople         int    `json:"num_people"`
	AccommodationType string `json:"accommodation_type"` // budget, standard, luxury
}

// PackageTemplate is a pre-built itinerary package with a fixed schedule and
// cost breakdown, exportable as plain text.
type PackageTemplate struct {
	Name          string        `json:"name"`
	Duration      string        `json:"duration"`
	GroupSize     int           `json:"group_size"`
	Itinerary     []PackageDay  `json:"itinerary"`
	TotalCost     int           `json:"total_cost"`
	CostPerPerson int           `json:"cost_per_person"`
	Included      []string      `json:"included"`
	Excluded      []string      `json:"excluded"`
}

type PackageDay struct {
	Day      int            `json:"day"`
	Schedule []PackageEntry `json:"schedule"`
}

type PackageEntry struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
	Cost     int    `json:"cost"`
	Notes    string `json:"notes"`
}
