package itinerary

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

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

// Generate builds a randomized itinerary. A request seed makes the result
// reproducible; without one the schedule varies per call.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "Generate")
	defer span.End()

	var req types.ItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Duration == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "duration is required")
		return
	}
	for _, cat := range req.Categories {
		if !cat.Valid() {
			api.ErrorResponse(w, r, http.StatusBadRequest, "unknown category")
			return
		}
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	span.SetAttributes(attribute.String("duration", req.Duration))

	itinerary, err := h.service.Generate(ctx, req, rng)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		if errors.Is(err, types.ErrNoCandidates) {
			api.ErrorResponse(w, r, http.StatusUnprocessableEntity, "no reviewed places available for the requested categories")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to generate itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to generate itinerary")
		return
	}

	span.SetStatus(codes.Ok, "Itinerary generated")
	api.WriteJSONResponse(w, r, http.StatusOK, itinerary)
}

// Estimate returns the deterministic trip cost breakdown.
func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "Estimate")
	defer span.End()

	var req types.CostEstimateRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Duration == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "duration is required")
		return
	}

	est := h.service.Estimate(ctx, req)
	span.SetStatus(codes.Ok, "Estimate returned")
	api.WriteJSONResponse(w, r, http.StatusOK, est)
}

// ListPackages returns the pre-built package templates.
func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := Packages()
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to load packages", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to load packages")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{"packages": packages})
}

// ExportPackage renders one package as a downloadable plain-text schedule.
func (h *Handler) ExportPackage(w http.ResponseWriter, r *http.Request) {
	packages, err := Packages()
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to load packages", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to load packages")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "packageIndex"))
	if err != nil || index < 0 || index >= len(packages) {
		api.ErrorResponse(w, r, http.StatusNotFound, "package not found")
		return
	}

	pkg := packages[index]
	text := RenderPackageText(pkg)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_일정표.txt"`, pkg.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
