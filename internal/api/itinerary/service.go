package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gangwonlab/tour-concierge/app/observability/metrics"
	"github.com/gangwonlab/tour-concierge/internal/types"
)

// Per-person and per-night cost constants in KRW.
const (
	costBudgetPerNight   = 80000
	costStandardPerNight = 150000
	costLuxuryPerNight   = 300000
	costMealPerPersonDay = 30000
	costAttractionPerDay = 15000
	costTransportPerHead = 50000
)

const candidatePoolSize = 30

// StatsProvider is the slice of the review service the generator draws
// candidates from.
type StatsProvider interface {
	Stats(ctx context.Context) (map[string]*types.PlaceStats, error)
}

type Service struct {
	stats  StatsProvider
	logger *slog.Logger
}

func NewService(stats StatsProvider, logger *slog.Logger) *Service {
	return &Service{stats: stats, logger: logger}
}

// EstimateTripCost computes the deterministic trip cost breakdown. The
// night count is the number before "박" in the duration ("2박 3일" → 2);
// a duration without it means a day trip counted as one night.
func EstimateTripCost(duration string, numPeople int, accommodationType string) types.CostEstimate {
	nights := parseNights(duration)
	days := nights + 1
	if numPeople < 1 {
		numPeople = 1
	}

	var accommodation int
	switch accommodationType {
	case "budget":
		accommodation = costBudgetPerNight * nights
	case "luxury":
		accommodation = costLuxuryPerNight * nights
	default:
		accommodation = costStandardPerNight * nights
	}

	est := types.CostEstimate{
		Nights:         nights,
		Days:           days,
		Accommodation:  accommodation,
		Meals:          costMealPerPersonDay * numPeople * days,
		Attractions:    costAttractionPerDay * numPeople * days,
		Transportation: costTransportPerHead * numPeople,
	}
	est.Total = est.Accommodation + est.Meals + est.Attractions + est.Transportation
	est.PerPerson = est.Total / numPeople
	return est
}

func parseNights(duration string) int {
	before, _, found := strings.Cut(duration, "박")
	if !found {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(before))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Generate builds a randomized schedule from the review analytics. The rng
// is injected so a seeded request reproduces the same itinerary; a place is
// used at most once across all days.
func (s *Service) Generate(ctx context.Context, req types.ItineraryRequest, rng *rand.Rand) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Generate")
	defer span.End()

	stats, err := s.stats.Stats(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load stats")
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = types.PriorityRevisitRate
	}

	pools := buildPools(stats, req.Categories, priority)
	if pools.isEmpty() {
		span.SetStatus(codes.Error, "No candidates")
		return nil, types.ErrNoCandidates
	}

	nights := parseNights(req.Duration)
	days := nights + 1
	preferHighScore := priority != types.PriorityNone

	used := make(map[string]bool)
	itinerary := &types.Itinerary{Duration: req.Duration}
	for day := 1; day <= days; day++ {
		itinerary.Days = append(itinerary.Days, s.planDay(day, days, pools, used, preferHighScore, rng))
	}

	span.SetAttributes(attribute.Int("days", days))
	span.SetStatus(codes.Ok, "Itinerary generated")
	metrics.Get().ItinerariesTotal.Add(ctx, 1)
	return itinerary, nil
}

// planDay fills the fixed slot template for one day. An exhausted pool
// drops its slot rather than repeating a place.
func (s *Service) planDay(day, totalDays int, pools candidatePools, used map[string]bool, preferHighScore bool, rng *rand.Rand) types.ItineraryDay {
	out := types.ItineraryDay{Day: day}
	final := day == totalDays

	add := func(timeSlot, label string, cat types.Category) {
		pick := pools.draw(cat, used, preferHighScore, rng)
		if pick == nil {
			return
		}
		out.Activities = append(out.Activities, types.Activity{
			Time:     timeSlot,
			Type:     label,
			Place:    pick.name,
			Category: cat,
			Stats:    pick.stats,
		})
	}

	if day >= 2 {
		add("09:00", "모닝 카페", types.CategoryCafe)
	}
	add("10:30", "오전 관광", types.CategoryAttraction)
	add("12:30", "점심 식사", types.CategoryRestaurant)
	if !final {
		add("14:30", "오후 관광", types.CategoryAttraction)
		if rng.Intn(2) == 0 {
			add("16:30", "카페 휴식", types.CategoryCafe)
		}
	}
	add("18:30", "저녁 식사", types.CategoryRestaurant)
	return out
}

type candidate struct {
	name  string
	stats *types.PlaceStats
	score float64
}

type candidatePools map[types.Category][]candidate

func (p candidatePools) isEmpty() bool {
	for _, pool := range p {
		if len(pool) > 0 {
			return false
		}
	}
	return true
}

// draw removes and returns one unused candidate from a category pool. With
// preferHighScore the pick comes uniformly from the top third of what
// remains; otherwise from the whole pool.
func (p candidatePools) draw(cat types.Category, used map[string]bool, preferHighScore bool, rng *rand.Rand) *candidate {
	pool := p[cat]
	remaining := make([]candidate, 0, len(pool))
	for _, c := range pool {
		if !used[c.name] {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		return nil
	}

	limit := len(remaining)
	if preferHighScore {
		limit = len(remaining) / 3
		if limit < 1 {
			limit = 1
		}
	}
	pick := remaining[rng.Intn(limit)]
	used[pick.name] = true
	return &pick
}

// buildPools ranks each requested category's places by the priority metric
// and keeps the strongest candidatePoolSize per category.
func buildPools(stats map[string]*types.PlaceStats, categories []types.Category, priority types.ItineraryPriority) candidatePools {
	if len(categories) == 0 {
		categories = []types.Category{types.CategoryAttraction, types.CategoryRestaurant, types.CategoryCafe}
	}
	wanted := make(map[types.Category]bool, len(categories))
	for _, cat := range categories {
		wanted[cat] = true
	}

	score := func(s *types.PlaceStats) float64 {
		if priority == types.PriorityPositiveRate {
			return s.PositiveRate
		}
		return s.RevisitRate
	}

	pools := make(candidatePools)
	for name, s := range stats {
		if !wanted[s.Category] {
			continue
		}
		pools[s.Category] = append(pools[s.Category], candidate{name: name, stats: s, score: score(s)})
	}
	for cat, pool := range pools {
		sort.Slice(pool, func(i, j int) bool {
			if pool[i].score != pool[j].score {
				return pool[i].score > pool[j].score
			}
			return pool[i].name < pool[j].name
		})
		if len(pool) > candidatePoolSize {
			pools[cat] = pool[:candidatePoolSize]
		}
	}
	return pools
}

func (s *Service) Estimate(ctx context.Context, req types.CostEstimateRequest) types.CostEstimate {
	_, span := otel.Tracer("ItineraryService").Start(ctx, "Estimate")
	defer span.End()
	span.SetAttributes(
		attribute.String("duration", req.Duration),
		attribute.Int("people", req.NumPeople),
	)
	est := EstimateTripCost(req.Duration, req.NumPeople, req.AccommodationType)
	span.SetStatus(codes.Ok, fmt.Sprintf("Estimated %d KRW", est.Total))
	return est
}
