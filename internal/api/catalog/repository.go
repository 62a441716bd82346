package catalog

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/gangwonlab/tour-concierge/internal/types"
)

//go:embed data/*.json
var dataFS embed.FS

// Repository holds the embedded static datasets, decoded once at startup.
type Repository struct {
	accommodations []types.Accommodation
	restaurants    []types.Restaurant
	attractions    []types.Attraction
	seasonal       map[string]types.SeasonalPick
}

func NewRepository() (*Repository, error) {
	r := &Repository{}
	for _, load := range []struct {
		file string
		dst  any
	}{
		{"data/accommodations.json", &r.accommodations},
		{"data/restaurants.json", &r.restaurants},
		{"data/attractions.json", &r.attractions},
		{"data/seasonal.json", &r.seasonal},
	} {
		raw, err := dataFS.ReadFile(load.file)
		if err != nil {
			return nil, fmt.Errorf("reading embedded %s: %w", load.file, err)
		}
		if err := json.Unmarshal(raw, load.dst); err != nil {
			return nil, fmt.Errorf("decoding embedded %s: %w", load.file, err)
		}
	}
	return r, nil
}

func (r *Repository) Accommodations() []types.Accommodation { return r.accommodations }
func (r *Repository) Restaurants() []types.Restaurant       { return r.restaurants }
func (r *Repository) Attractions() []types.Attraction       { return r.attractions }

func (r *Repository) Seasonal(season string) (types.SeasonalPick, bool) {
	pick, ok := r.seasonal[season]
	return pick, ok
}
