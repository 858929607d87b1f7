package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
)

// geminiAssistantRole is what the Gemini API calls the assistant side of the
// conversation. The adapter renames roles and wraps content in Parts before
// anything reaches the wire.
const geminiAssistantRole = "model"

// GeminiProvider streams generations through the Google Generative AI SDK.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider wraps an already constructed genai client. The client is
// shared with the embedding generator and closed by the caller on shutdown.
func NewGeminiProvider(client *genai.Client) *GeminiProvider {
	return &GeminiProvider{client: client}
}

func (p *GeminiProvider) Name() string { return "google" }

func toGeminiContent(m Message) *genai.Content {
	role := m.Role
	if role == "assistant" {
		role = geminiAssistantRole
	}
	return &genai.Content{
		Role:  role,
		Parts: []genai.Part{genai.Text(m.Content)},
	}
}

// Stream implements Provider.
func (p *GeminiProvider) Stream(ctx context.Context, req GenerationRequest) (<-chan string, <-chan error) {
	contentChan := make(chan string, 100)
	errorChan := make(chan error, 1)

	go func() {
		defer close(contentChan)
		defer close(errorChan)

		if len(req.Messages) == 0 {
			errorChan <- fmt.Errorf("gemini: empty message history")
			return
		}

		model := p.client.GenerativeModel(req.Model)
		if req.SystemPrompt != "" {
			model.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(req.SystemPrompt)},
			}
		}
		if req.MaxTokens > 0 {
			model.SetMaxOutputTokens(int32(req.MaxTokens))
		}
		model.SetTemperature(req.Temperature)

		session := model.StartChat()
		for _, m := range req.Messages[:len(req.Messages)-1] {
			session.History = append(session.History, toGeminiContent(m))
		}
		last := req.Messages[len(req.Messages)-1]

		iter := session.SendMessageStream(ctx, genai.Text(last.Content))
		for {
			resp, err := iter.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				if ctx.Err() != nil {
					errorChan <- ctx.Err()
					return
				}
				errorChan <- fmt.Errorf("gemini: stream failed: %w", err)
				return
			}
			if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}
			for _, part := range resp.Candidates[0].Content.Parts {
				txt, ok := part.(genai.Text)
				if !ok || txt == "" {
					continue
				}
				select {
				case contentChan <- string(txt):
				case <-ctx.Done():
					errorChan <- ctx.Err()
					return
				}
			}
		}
	}()

	return contentChan, errorChan
}
