package chat

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
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

// CreateSession starts an empty conversation.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "CreateSession")
	defer span.End()

	session := h.service.NewSession(ctx)
	span.SetAttributes(attribute.String("session.id", session.ID.String()))
	span.SetStatus(codes.Ok, "Session created")
	api.WriteJSONResponse(w, r, http.StatusCreated, session)
}

// GetSession returns a session with its full history.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "GetSession")
	defer span.End()

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid session ID")
		return
	}

	session, err := h.service.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, types.ErrSessionNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "session not found")
			return
		}
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to load session")
		return
	}

	span.SetStatus(codes.Ok, "Session returned")
	api.WriteJSONResponse(w, r, http.StatusOK, session)
}

// SendMessage runs one blocking turn and returns the full reply.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "SendMessage")
	defer span.End()

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid session ID")
		return
	}

	var req types.ChatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "message cannot be empty")
		return
	}

	span.SetAttributes(attribute.String("session.id", sessionID.String()))

	resp, err := h.service.SendMessage(ctx, sessionID, req.Message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Turn failed")
		switch {
		case errors.Is(err, types.ErrSessionNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "session not found")
		case errors.Is(err, types.ErrServiceUnavailable), errors.Is(err, types.ErrNotConfigured):
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "assistant is temporarily unavailable")
		default:
			api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to process message")
		}
		return
	}

	span.SetStatus(codes.Ok, "Turn complete")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
