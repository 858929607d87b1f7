// Package llm contains the stream adapters for the upstream generation
// services. Each upstream has its own native request/response shape; the
// adapters translate to and from the uniform Provider contract so the rest
// of the pipeline never sees provider-specific wire formats.
package llm

import "context"

// Message is one turn of conversation history in the gateway's neutral
// shape. Roles are "user" and "assistant"; adapters rename or restructure
// them as their upstream requires.
type Message struct {
	Role    string
	Content string
}

// GenerationRequest carries everything an adapter needs for one turn.
type GenerationRequest struct {
	Model        string
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
	Temperature  float32
}

// Provider is the contract every upstream adapter satisfies. Stream returns
// a channel of text increments and a channel for a single terminal error.
// The content channel is closed when the upstream stream ends; the error
// channel (buffered, capacity 1) receives at most one error and is closed
// with it. Increments are forwarded as soon as they are received upstream,
// never buffered until completion. Cancelling ctx stops consumption and
// releases the upstream connection.
type Provider interface {
	Name() string
	Stream(ctx context.Context, req GenerationRequest) (<-chan string, <-chan error)
}

// Embedder turns text into a fixed-length vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
