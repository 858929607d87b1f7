package models

import (
	"github.com/google/uuid"
)

// --- Request Structs ---

// SignupRequest defines the expected body for the signup endpoint.
type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest defines the expected body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChatMessage is one turn of history as supplied by the client.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest defines the body of the streaming chat endpoint.
// ConversationID is optional; when absent a conversation is created lazily.
type ChatRequest struct {
	Messages       []ChatMessage `json:"messages"`
	Model          string        `json:"model"`
	ConversationID *uuid.UUID    `json:"conversation_id,omitempty"`
}

// LatestUserMessage returns the content of the last user-role message, or ""
// when the history holds none.
func (r ChatRequest) LatestUserMessage() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content
		}
	}
	return ""
}

// --- Response Structs ---

// UserResponse defines the user information returned by the API.
// Never includes the hashed password.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Tier  string    `json:"tier"`
}

// AuthResponse defines the response body for successful authentication.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListConversationsResponse wraps the conversation listing endpoint.
type ListConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
}

// ListMessagesResponse wraps the message history endpoint.
type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
}
