package models

import (
	"time"

	"github.com/google/uuid"
)

// Message roles stored in the messages table.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User represents a registered student in the database.
type User struct {
	ID             uuid.UUID `db:"id"`
	Email          string    `db:"email"`
	Name           string    `db:"name"`
	HashedPassword string    `db:"hashed_password"`
	Tier           string    `db:"tier"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Conversation represents one tutoring conversation owned by a single user.
// Created lazily on the first message of a session that supplies no id.
type Conversation struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Message is a single append-only turn inside a conversation.
// Ordering is creation time.
type Message struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ConversationID uuid.UUID `db:"conversation_id" json:"conversation_id"`
	Role           string    `db:"role" json:"role"`
	Content        string    `db:"content" json:"content"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// UserProfile is the progress/tier/project snapshot read by the context
// assembler. It joins the users table with the student's enrollment state.
type UserProfile struct {
	UserID             uuid.UUID
	Name               string
	Tier               string
	ProjectDescription string
	CompletedLessons   int
	TotalLessons       int
	CurrentModuleTitle string
	CurrentLessonID    *uuid.UUID
	CurrentLessonTitle string
	ExercisesCompleted int
	ExercisesTotal     int
}

// DocumentChunk is one embedded slice of course reference material as stored
// in the content store. Embeddings are loaded once and cached in memory by
// the retrieval service.
type DocumentChunk struct {
	ID          uuid.UUID
	Content     string
	Topic       string
	Subtopic    string
	Description string
	Embedding   []float32
}
