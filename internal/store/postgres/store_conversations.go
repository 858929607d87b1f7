package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pablocarmonaesparza/education-sub001/internal/models"
	"github.com/pablocarmonaesparza/education-sub001/internal/store"
)

const createConversation = `
INSERT INTO conversations (id, user_id, title)
VALUES ($1, $2, $3)
RETURNING id, user_id, title, created_at, updated_at;
`

func (s *PostgresStore) CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*models.Conversation, error) {
	row := s.db.QueryRow(ctx, createConversation, uuid.New(), userID, title)
	var c models.Conversation
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("database error creating conversation: %w", err)
	}
	return &c, nil
}

const getConversation = `
SELECT id, user_id, title, created_at, updated_at
FROM conversations
WHERE id = $1 AND user_id = $2;
`

func (s *PostgresStore) GetConversation(ctx context.Context, id, userID uuid.UUID) (*models.Conversation, error) {
	row := s.db.QueryRow(ctx, getConversation, id, userID)
	var c models.Conversation
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error fetching conversation: %w", err)
	}
	return &c, nil
}

const listConversations = `
SELECT id, user_id, title, created_at, updated_at
FROM conversations
WHERE user_id = $1
ORDER BY updated_at DESC;
`

func (s *PostgresStore) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	rows, err := s.db.Query(ctx, listConversations, userID)
	if err != nil {
		return nil, fmt.Errorf("database error listing conversations: %w", err)
	}
	defer rows.Close()

	var conversations []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning conversation: %w", err)
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

const appendMessage = `
INSERT INTO messages (id, conversation_id, role, content)
VALUES ($1, $2, $3, $4)
RETURNING id, conversation_id, role, content, created_at;
`

// AppendMessage inserts one message and bumps the conversation's updated_at.
// Append semantics are the database's own; no coordination happens here.
func (s *PostgresStore) AppendMessage(ctx context.Context, conversationID uuid.UUID, role, content string) (*models.Message, error) {
	row := s.db.QueryRow(ctx, appendMessage, uuid.New(), conversationID, role, content)
	var m models.Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("database error appending message: %w", err)
	}

	// The message itself landed; a stale updated_at is tolerable.
	_, _ = s.db.Exec(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id = $1`, conversationID)
	return &m, nil
}

const listMessages = `
SELECT m.id, m.conversation_id, m.role, m.content, m.created_at
FROM messages m
JOIN conversations c ON c.id = m.conversation_id
WHERE m.conversation_id = $1 AND c.user_id = $2
ORDER BY m.created_at ASC
LIMIT $3 OFFSET $4;
`

func (s *PostgresStore) ListMessages(ctx context.Context, conversationID, userID uuid.UUID, limit, offset int) ([]models.Message, error) {
	rows, err := s.db.Query(ctx, listMessages, conversationID, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("database error listing messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
