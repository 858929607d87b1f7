package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pablocarmonaesparza/education-sub001/internal/services"
	"github.com/pablocarmonaesparza/education-sub001/internal/store"
	"github.com/pablocarmonaesparza/education-sub001/pkg/httputil"
)

// ConversationHandlers serves conversation history reads.
type ConversationHandlers struct {
	conversationService *services.ConversationService
}

func NewConversationHandlers(conversationService *services.ConversationService) *ConversationHandlers {
	return &ConversationHandlers{conversationService: conversationService}
}

// HandleListConversations lists the authenticated user's conversations.
func (h *ConversationHandlers) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r.Context())
	if err != nil {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	resp, err := h.conversationService.ListConversations(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR: listing conversations for user %s: %v", userID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list conversations")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleListMessages returns one conversation's messages in creation order.
func (h *ConversationHandlers) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r.Context())
	if err != nil {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	resp, err := h.conversationService.ListMessages(r.Context(), conversationID, userID, limit, offset)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.RespondError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		log.Printf("ERROR: listing messages for conversation %s: %v", conversationID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list messages")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}
