package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/pablocarmonaesparza/education-sub001/internal/llm"
	"github.com/pablocarmonaesparza/education-sub001/internal/models"
	"github.com/pablocarmonaesparza/education-sub001/internal/store"
)

// DocumentSearcher is what the assembler needs from the retrieval service.
type DocumentSearcher interface {
	Search(ctx context.Context, embedding []float32, limit int) ([]models.RetrievedDocument, error)
}

// ContextService assembles the per-request personalization context. Four
// fetches run as two concurrent chains: profile -> transcript and
// embedding -> relevance search. Every fetch is individually best-effort;
// a failed branch degrades the prompt instead of failing the turn.
type ContextService struct {
	store     store.Store
	embedder  llm.Embedder
	retrieval DocumentSearcher
}

func NewContextService(s store.Store, embedder llm.Embedder, retrieval DocumentSearcher) *ContextService {
	return &ContextService{
		store:     s,
		embedder:  embedder,
		retrieval: retrieval,
	}
}

// Assemble produces the UserContext and retrieved documents for one turn.
// It never returns an error: each sub-fetch substitutes its zero value on
// failure. It returns only after all branches have settled.
func (s *ContextService) Assemble(ctx context.Context, userID uuid.UUID, query string) (models.UserContext, []models.RetrievedDocument) {
	var (
		wg      sync.WaitGroup
		userCtx models.UserContext
		docs    []models.RetrievedDocument
	)

	wg.Add(2)

	// Chain 1: user profile, then the current lesson's transcript.
	go func() {
		defer wg.Done()
		profile, err := s.store.GetUserProfile(ctx, userID)
		if err != nil {
			log.Printf("WARN: context assembly: profile fetch failed for user %s: %v", userID, err)
			return
		}
		userCtx.Name = profile.Name
		userCtx.Tier = profile.Tier
		userCtx.ProjectDescription = profile.ProjectDescription
		userCtx.CompletedLessons = profile.CompletedLessons
		userCtx.TotalLessons = profile.TotalLessons
		userCtx.ModuleTitle = profile.CurrentModuleTitle
		userCtx.LessonTitle = profile.CurrentLessonTitle
		if profile.ExercisesTotal > 0 {
			userCtx.ExerciseSummary = fmt.Sprintf("%d of %d exercises completed", profile.ExercisesCompleted, profile.ExercisesTotal)
		}

		if profile.CurrentLessonID == nil {
			return
		}
		transcript, err := s.store.GetLessonTranscript(ctx, *profile.CurrentLessonID)
		if err != nil {
			log.Printf("WARN: context assembly: transcript fetch failed for lesson %s: %v", *profile.CurrentLessonID, err)
			return
		}
		userCtx.LessonTranscript = transcript
	}()

	// Chain 2: query embedding, then relevance search.
	go func() {
		defer wg.Done()
		embedding, err := s.embedder.Embed(ctx, query)
		if err != nil {
			log.Printf("WARN: context assembly: embedding generation failed: %v", err)
			return
		}
		found, err := s.retrieval.Search(ctx, embedding, NumRelevantDocuments)
		if err != nil {
			log.Printf("WARN: context assembly: relevance search failed: %v", err)
			return
		}
		docs = found
	}()

	wg.Wait()
	return userCtx, docs
}
