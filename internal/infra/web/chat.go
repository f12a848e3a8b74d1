// File: internal/infra/web/chat.go
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"ruga-file-analysis/internal/domain"
	"ruga-file-analysis/internal/domain/ports/adapter"
	"ruga-file-analysis/internal/usecase"
)

type chatRequest struct {
	Question         string            `json:"question"`
	ContextDocuments []string          `json:"context_documents"`
	History          []adapter.Message `json:"history"`
}

// chatEvent is one SSE payload line. type is "ai" for a token, "done"
// for normal termination, "error" for an aborted stream.
type chatEvent struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// chatHandler streams the answer as server-sent events. Validation
// failures are plain JSON errors; anything after the first token can
// only be reported in-stream.
func chatHandler(uc *usecase.ChatUC, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		send := func(ev chatEvent) error {
			b, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		}

		err := uc.Ask(r.Context(), req.Question, req.ContextDocuments, req.History, func(token string) error {
			return send(chatEvent{Type: "ai", Content: token})
		})
		if err != nil {
			if !errors.Is(err, domain.ErrInvalidArgument) {
				log.Error().Err(err).Msg("chat stream failed")
			}
			_ = send(chatEvent{Type: "error", Content: err.Error()})
			return
		}
		_ = send(chatEvent{Type: "done"})
	}
}
