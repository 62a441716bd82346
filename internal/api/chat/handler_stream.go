package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gangwonlab/tour-concierge/internal/api"
	"github.com/gangwonlab/tour-concierge/internal/types"
)

// SendMessageStream runs one turn over SSE. Each stream event becomes one
// SSE frame; the terminal frame is either a complete or an error event.
func (h *Handler) SendMessageStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.ErrorResponse(w, r, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ctx := r.Context()

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeSSEError(w, flusher, "invalid session ID")
		return
	}

	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeSSEError(w, flusher, "invalid request body")
		return
	}
	if req.Message == "" {
		h.writeSSEError(w, flusher, "message cannot be empty")
		return
	}

	events, err := h.service.SendMessageStream(ctx, sessionID, req.Message)
	if err != nil {
		if errors.Is(err, types.ErrSessionNotFound) {
			h.writeSSEError(w, flusher, "session not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to start stream", slog.Any("error", err))
		h.writeSSEError(w, flusher, "assistant is temporarily unavailable")
		return
	}

	h.logger.InfoContext(ctx, "Started streaming turn", slog.String("session_id", sessionID.String()))

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			writeSSEEvent(w, event)
			flusher.Flush()
		case <-ctx.Done():
			h.logger.InfoContext(ctx, "Client disconnected", slog.String("session_id", sessionID.String()))
			return
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, event types.StreamEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "id: %s\n", event.EventID)
	fmt.Fprintf(w, "event: %s\n", event.Type)
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func (h *Handler) writeSSEError(w http.ResponseWriter, flusher http.Flusher, msg string) {
	writeSSEEvent(w, types.StreamEvent{
		Type:      types.EventTypeError,
		Error:     msg,
		IsFinal:   true,
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
	})
	flusher.Flush()
}
