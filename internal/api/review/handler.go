package review

import (
	"log/slog"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gangwonlab/tour-concierge/internal/api"
	"github.com/gangwonlab/tour-concierge/internal/types"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// GetStats returns per-place review statistics for the whole corpus.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ReviewHandler").Start(r.Context(), "GetStats")
	defer span.End()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to compute stats")
		h.logger.ErrorContext(ctx, "Failed to compute review stats", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to compute review statistics")
		return
	}

	span.SetStatus(codes.Ok, "Stats returned")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"places":      stats,
		"fingerprint": h.service.Fingerprint(),
	})
}

// GetTopPlaces ranks places by a sortable metric. Query params: category,
// sort_by (revisit_rate|positive_rate|total_reviews|avg_visit_count), limit.
func (h *Handler) GetTopPlaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ReviewHandler").Start(r.Context(), "GetTopPlaces")
	defer span.End()

	q := r.URL.Query()
	category := types.Category(q.Get("category"))
	if category != "" && !category.Valid() {
		api.ErrorResponse(w, r, http.StatusBadRequest, "unknown category")
		return
	}

	sortKey := q.Get("sort_by")
	if sortKey == "" {
		sortKey = SortByRevisitRate
	}
	if !validSortKey(sortKey) {
		api.ErrorResponse(w, r, http.StatusBadRequest, "unknown sort_by value")
		return
	}

	limit := 10
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	span.SetAttributes(
		attribute.String("category", string(category)),
		attribute.String("sort_by", sortKey),
		attribute.Int("limit", limit),
	)

	ranked, err := h.service.TopPlaces(ctx, category, sortKey, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to rank places")
		h.logger.ErrorContext(ctx, "Failed to rank places", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to rank places")
		return
	}

	span.SetStatus(codes.Ok, "Ranking returned")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"places": ranked,
		"count":  len(ranked),
	})
}
