package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pablocarmonaesparza/education-sub001/internal/models"
	"github.com/pablocarmonaesparza/education-sub001/internal/store"
)

const getUserProfile = `
SELECT u.id, u.name, u.tier,
       COALESCE(e.project_description, ''),
       COALESCE(e.completed_lessons, 0),
       COALESCE(e.total_lessons, 0),
       COALESCE(e.current_module_title, ''),
       e.current_lesson_id,
       COALESCE(e.current_lesson_title, ''),
       COALESCE(e.exercises_completed, 0),
       COALESCE(e.exercises_total, 0)
FROM users u
LEFT JOIN enrollments e ON e.user_id = u.id
WHERE u.id = $1;
`

// GetUserProfile returns the progress/tier/project snapshot for one user.
func (s *PostgresStore) GetUserProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	row := s.db.QueryRow(ctx, getUserProfile, userID)
	var p models.UserProfile
	err := row.Scan(
		&p.UserID,
		&p.Name,
		&p.Tier,
		&p.ProjectDescription,
		&p.CompletedLessons,
		&p.TotalLessons,
		&p.CurrentModuleTitle,
		&p.CurrentLessonID,
		&p.CurrentLessonTitle,
		&p.ExercisesCompleted,
		&p.ExercisesTotal,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error fetching user profile: %w", err)
	}
	return &p, nil
}

const getLessonTranscript = `
SELECT content
FROM lesson_segments
WHERE lesson_id = $1
ORDER BY position ASC;
`

// GetLessonTranscript reconstructs a lesson's ordered full text from its
// stored segments.
func (s *PostgresStore) GetLessonTranscript(ctx context.Context, lessonID uuid.UUID) (string, error) {
	rows, err := s.db.Query(ctx, getLessonTranscript, lessonID)
	if err != nil {
		return "", fmt.Errorf("database error fetching lesson transcript: %w", err)
	}
	defer rows.Close()

	var parts []string
	for rows.Next() {
		var segment string
		if err := rows.Scan(&segment); err != nil {
			return "", fmt.Errorf("error scanning transcript segment: %w", err)
		}
		parts = append(parts, segment)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(parts) == 0 {
		return "", store.ErrNotFound
	}
	return strings.Join(parts, "\n"), nil
}

const getAllDocumentChunks = `
SELECT id, content, topic, subtopic, COALESCE(description, ''), embedding
FROM document_chunks
WHERE embedding IS NOT NULL;
`

// GetAllDocumentChunks loads every embedded reference chunk. The retrieval
// service caches the result in memory at startup.
func (s *PostgresStore) GetAllDocumentChunks(ctx context.Context) ([]models.DocumentChunk, error) {
	rows, err := s.db.Query(ctx, getAllDocumentChunks)
	if err != nil {
		return nil, fmt.Errorf("database error loading document chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.DocumentChunk
	for rows.Next() {
		var c models.DocumentChunk
		if err := rows.Scan(&c.ID, &c.Content, &c.Topic, &c.Subtopic, &c.Description, &c.Embedding); err != nil {
			return nil, fmt.Errorf("error scanning document chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
