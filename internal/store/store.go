package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pablocarmonaesparza/education-sub001/internal/models"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for database operations. This allows for
// mocking in tests and potential DB backend switching.
type Store interface {
	// User operations
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	// Conversation store operations. Messages are append-only; ordering is
	// creation time. The store performs no locking of its own.
	CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*models.Conversation, error)
	GetConversation(ctx context.Context, id, userID uuid.UUID) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	AppendMessage(ctx context.Context, conversationID uuid.UUID, role, content string) (*models.Message, error)
	ListMessages(ctx context.Context, conversationID, userID uuid.UUID, limit, offset int) ([]models.Message, error)

	// Content store operations consumed by the context assembler.
	GetUserProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	GetLessonTranscript(ctx context.Context, lessonID uuid.UUID) (string, error)
	GetAllDocumentChunks(ctx context.Context) ([]models.DocumentChunk, error)
}
