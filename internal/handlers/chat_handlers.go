package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/pablocarmonaesparza/education-sub001/internal/models"
	"github.com/pablocarmonaesparza/education-sub001/internal/services"
	"github.com/pablocarmonaesparza/education-sub001/internal/stream"
	"github.com/pablocarmonaesparza/education-sub001/pkg/httputil"
)

// ChatHandlers serves the streaming tutoring endpoint.
type ChatHandlers struct {
	chatService *services.ChatService
}

func NewChatHandlers(chatService *services.ChatService) *ChatHandlers {
	return &ChatHandlers{chatService: chatService}
}

// HandleChat runs one tutoring turn. Pre-flight failures answer with an
// HTTP status; once headers are out, everything travels as chunks. The
// response body is newline-delimited JSON, one chunk per line, flushed as
// produced.
func (h *ChatHandlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r.Context())
	if err != nil {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}

	// Cancelling here stops the producing goroutine if the write side dies
	// before the request context itself is torn down.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	chunks, err := h.chatService.StreamChat(ctx, userID, req)
	if err != nil {
		log.Printf("ERROR: chat setup failed for user %s: %v", userID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to start chat")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	enc := stream.NewEncoder(w)
	for chunk := range chunks {
		if err := enc.Encode(chunk); err != nil {
			log.Printf("WARN: client write failed, aborting stream for user %s: %v", userID, err)
			cancel()
			// Drain so the producer observes cancellation and exits.
			for range chunks {
			}
			return
		}
	}
}
