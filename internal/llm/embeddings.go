package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

const defaultEmbeddingModelName = "text-embedding-004"

// GeminiEmbedder turns text into a fixed-length vector via the Gemini
// embedding API. It shares the genai client with the Gemini stream adapter.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates an embedder. model may be empty to use the
// default embedding model.
func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	if model == "" {
		model = defaultEmbeddingModelName
	}
	return &GeminiEmbedder{client: client, model: model}
}

// Embed implements Embedder.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding data received from gemini")
	}
	return res.Embedding.Values, nil
}
