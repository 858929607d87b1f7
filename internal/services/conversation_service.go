package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pablocarmonaesparza/education-sub001/internal/models"
	"github.com/pablocarmonaesparza/education-sub001/internal/store"
)

// ConversationService serves history reads for the dashboard side of the
// client: conversation listings and per-conversation message history.
type ConversationService struct {
	store store.Store
}

func NewConversationService(s store.Store) *ConversationService {
	return &ConversationService{store: s}
}

// ListConversations returns the user's conversations, most recently
// updated first.
func (s *ConversationService) ListConversations(ctx context.Context, userID uuid.UUID) (*models.ListConversationsResponse, error) {
	conversations, err := s.store.ListConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	if conversations == nil {
		conversations = []models.Conversation{}
	}
	return &models.ListConversationsResponse{Conversations: conversations}, nil
}

// ListMessages returns a conversation's messages in creation order. The
// conversation must belong to the requesting user.
func (s *ConversationService) ListMessages(ctx context.Context, conversationID, userID uuid.UUID, limit, offset int) (*models.ListMessagesResponse, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}

	if _, err := s.store.GetConversation(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	messages, err := s.store.ListMessages(ctx, conversationID, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return &models.ListMessagesResponse{Messages: messages}, nil
}
