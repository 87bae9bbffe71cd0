package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vizchat/vizchat/internal/assistant"
	"github.com/vizchat/vizchat/internal/config"
	"github.com/vizchat/vizchat/internal/observability"
)

type chatRequest struct {
	Message *string         `json:"message"`
	Tableau json.RawMessage `json:"tableau"`
}

func handleChat(cfg config.Config, deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Chat == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat service is not configured", false, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, cfg.HTTP.MaxBodyBytes)
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(r.Context(), w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "chat request body is too large", false, map[string]any{"limit_bytes": tooLarge.Limit})
			return
		}
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid chat request body", false, map[string]any{"details": err.Error()})
		return
	}
	if req.Message == nil {
		writeError(r.Context(), w, http.StatusBadRequest, "MESSAGE_REQUIRED", "message is required", false, nil)
		return
	}

	resp, err := deps.Chat.Chat(r.Context(), assistant.ChatRequest{
		Message: *req.Message,
		Tableau: req.Tableau,
	})
	if err != nil {
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "chat failed",
				slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
				slog.Any("error", err),
			)
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "MODEL_INVOCATION_FAILED", "Internal Server Error: "+err.Error(), true, map[string]any{"details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
