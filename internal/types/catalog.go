package types

// Accommodation is a static catalog entry loaded once at startup. The price
// map carries one entry per room type; an accommodation without any price
// is unusable and excluded from filtered results.
type Accommodation struct {
	Name          string              `json:"name"`
	Category      string              `json:"category"`
	Location      string              `json:"location"`
	PricePerNight map[string]int      `json:"price_per_night"`
	RoomTypes     map[string]RoomType `json:"room_types"`
	Meals         MealInfo            `json:"meals"`
	Facilities    []string            `json:"facilities"`
	// Distance annotations as shown to users, e.g. "15km (차로 20분)".
	DistanceToAttractions map[string]string `json:"distance_to_attractions"`
	Rating                float64           `json:"rating"`
	CleanlinessScore      float64           `json:"cleanliness_score"`
	RecentBookings        int               `json:"recent_bookings"`
}

type RoomType struct {
	Capacity  int      `json:"capacity"`
	Beds      string   `json:"beds"`
	Amenities []string `json:"amenities"`
}

type MealInfo struct {
	BreakfastIncluded bool   `json:"breakfast_included"`
	BreakfastPrice    int    `json:"breakfast_price"`
	BreakfastType     string `json:"breakfast_type"`
	Restaurant        bool   `json:"restaurant"`
}

type Restaurant struct {
	Name                  string            `json:"name"`
	Category              string            `json:"category"`
	Specialty             string            `json:"specialty"`
	Location              string            `json:"location"`
	PriceRange            map[string]int    `json:"price_range"`
	AverageCostPerPerson  int               `json:"average_cost_per_person"`
	OperatingHours        string            `json:"operating_hours"`
	ClosedDays            string            `json:"closed_days"`
	Parking               string            `json:"parking"`
	WaitingTime           string            `json:"waiting_time"`
	Rating                float64           `json:"rating"`
	DistanceToAttractions map[string]string `json:"distance_to_attractions"`
	PopularMenu           []string          `json:"popular_menu"`
}

type Attraction struct {
	Name                string         `json:"name"`
	Category            string         `json:"category"`
	Location            string         `json:"location"`
	EntranceFee         map[string]int `json:"entrance_fee"`
	OperatingHours      string         `json:"operating_hours"`
	RecommendedDuration string         `json:"recommended_duration"`
	Parking             ParkingInfo    `json:"parking"`
	BestSeason          []string       `json:"best_season"`
	Facilities          []string       `json:"facilities"`
	Rating              float64        `json:"rating"`
	DistanceFromSeoul   string         `json:"distance_from_seoul"`
}

type ParkingInfo struct {
	Available bool `json:"available"`
	Fee       int  `json:"fee"`
	Spaces    int  `json:"spaces"`
}

// AccommodationFilter is the ephemeral user-selected search criteria. Price
// bounds are in 만원 (10,000 KRW) units, matching the slider of the
// interactive surface.
type AccommodationFilter struct {
	Regions       []string `json:"regions"`
	PriceMin      int      `json:"price_min"`
	PriceMax      int      `json:"price_max"`
	RoomTypes     []string `json:"room_types"`
	MealIncluded  bool     `json:"meal_included"`
	ParkingNeeded bool     `json:"parking"`
}

// SeasonalPick is the per-season recommendation block.
type SeasonalPick struct {
	Attractions         []string `json:"attractions"`
	Activities          []string `json:"activities"`
	WeatherTip          string   `json:"weather_tip"`
	RecommendedDuration string   `json:"recommended_duration"`
}

// RegionPriceEntry is one row of the per-region price comparison view.
type RegionPriceEntry struct {
	Name     string  `json:"name"`
	MinPrice int     `json:"min_price"`
	Rating   float64 `json:"rating"`
}

// RoomTypePriceSummary aggregates nightly prices across accommodations for
// one room-type label.
type RoomTypePriceSummary struct {
	RoomType string  `json:"room_type"`
	Average  float64 `json:"average"`
	Min      int     `json:"min"`
	Max      int     `json:"max"`
}
