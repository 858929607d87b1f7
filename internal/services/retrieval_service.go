package services

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/pablocarmonaesparza/education-sub001/internal/models"
	"github.com/pablocarmonaesparza/education-sub001/internal/store"
	"github.com/pablocarmonaesparza/education-sub001/internal/utils"
)

const (
	// NumRelevantDocuments is how many reference excerpts a turn may carry.
	NumRelevantDocuments = 4
	// SimilarityThreshold filters out chunks that merely happen to rank.
	SimilarityThreshold = 0.65
)

// RetrievalService ranks course reference chunks against a query embedding.
// Chunks and their embeddings are loaded once at startup and cached in
// memory; the corpus is small and read-only while the process runs.
type RetrievalService struct {
	chunks []models.DocumentChunk
}

// NewRetrievalService loads the document chunk cache from the content store.
func NewRetrievalService(ctx context.Context, s store.Store) (*RetrievalService, error) {
	chunks, err := s.GetAllDocumentChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load document chunks: %w", err)
	}
	if len(chunks) == 0 {
		log.Println("Warning: RetrievalService initialized with no document chunks. Reference search will return nothing.")
	} else {
		log.Printf("RetrievalService initialized with %d document chunks.", len(chunks))
	}
	return &RetrievalService{chunks: chunks}, nil
}

type scoredChunk struct {
	chunk      models.DocumentChunk
	similarity float32
}

// Search returns up to limit documents ranked by cosine similarity against
// the query embedding, most similar first. A non-positive limit uses
// NumRelevantDocuments.
func (s *RetrievalService) Search(ctx context.Context, embedding []float32, limit int) ([]models.RetrievedDocument, error) {
	if limit <= 0 {
		limit = NumRelevantDocuments
	}
	if len(s.chunks) == 0 || len(embedding) == 0 {
		return nil, nil
	}

	scored := make([]scoredChunk, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if len(chunk.Embedding) == 0 {
			continue
		}
		similarity, err := utils.CosineSimilarity(embedding, chunk.Embedding)
		if err != nil {
			log.Printf("Error calculating similarity for chunk %s: %v. Skipping.", chunk.ID, err)
			continue
		}
		if similarity >= SimilarityThreshold {
			scored = append(scored, scoredChunk{chunk: chunk, similarity: similarity})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].similarity > scored[j].similarity
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	docs := make([]models.RetrievedDocument, 0, len(scored))
	for _, sc := range scored {
		docs = append(docs, models.RetrievedDocument{
			ID:          sc.chunk.ID.String(),
			Content:     sc.chunk.Content,
			Topic:       sc.chunk.Topic,
			Subtopic:    sc.chunk.Subtopic,
			Description: sc.chunk.Description,
			Similarity:  sc.similarity,
		})
	}
	return docs, nil
}
