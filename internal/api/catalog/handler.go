package catalog

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gangwonlab/tour-concierge/internal/api"
	"github.com/gangwonlab/tour-concierge/internal/types"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// GetAccommodations lists accommodations, filtered by query parameters:
// regions (comma separated), price_min / price_max (만원), room_types,
// meal_included, parking.
func (h *Handler) GetAccommodations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := types.AccommodationFilter{
		Regions:       splitParam(q.Get("regions")),
		RoomTypes:     splitParam(q.Get("room_types")),
		MealIncluded:  q.Get("meal_included") == "true",
		ParkingNeeded: q.Get("parking") == "true",
	}

	var err error
	if filter.PriceMin, err = intParam(q.Get("price_min")); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "price_min must be a number")
		return
	}
	if filter.PriceMax, err = intParam(q.Get("price_max")); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "price_max must be a number")
		return
	}

	results := h.service.FilterAccommodations(filter)
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"accommodations": results,
		"count":          len(results),
	})
}

// CompareAccommodations returns the price comparison views.
func (h *Handler) CompareAccommodations(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"by_region":    h.service.PricesByRegion(),
		"by_room_type": h.service.PricesByRoomType(),
	})
}

func (h *Handler) GetRestaurants(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"restaurants": h.service.Restaurants(),
	})
}

func (h *Handler) GetAttractions(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"attractions": h.service.Attractions(),
	})
}

// GetSeasonal returns the recommendation block for the current season.
func (h *Handler) GetSeasonal(w http.ResponseWriter, r *http.Request) {
	season, pick := h.service.SeasonalPick(time.Now())
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"season":         season,
		"recommendation": pick,
	})
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
