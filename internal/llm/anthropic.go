package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicAPIVersion     = "2023-06-01"
)

// AnthropicProvider streams messages from the Anthropic API. Anthropic takes
// the system instruction as a separate top-level parameter, distinct from
// the alternating user/assistant history.
type AnthropicProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewAnthropicProvider creates an adapter for the Anthropic messages API.
// baseURL may be empty to use the public endpoint.
func NewAnthropicProvider(apiKey, baseURL string) *AnthropicProvider {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &AnthropicProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float32            `json:"temperature"`
	Stream      bool               `json:"stream"`
}

type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta *struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	} `json:"delta,omitempty"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Stream implements Provider.
func (p *AnthropicProvider) Stream(ctx context.Context, req GenerationRequest) (<-chan string, <-chan error) {
	contentChan := make(chan string, 100)
	errorChan := make(chan error, 1)

	go func() {
		defer close(contentChan)
		defer close(errorChan)

		if p.apiKey == "" {
			errorChan <- fmt.Errorf("anthropic: API key not configured")
			return
		}

		maxTokens := req.MaxTokens
		if maxTokens <= 0 {
			// max_tokens is mandatory for this API
			maxTokens = 4096
		}

		messages := make([]anthropicMessage, 0, len(req.Messages))
		for _, m := range req.Messages {
			messages = append(messages, anthropicMessage{Role: m.Role, Content: m.Content})
		}

		body := anthropicRequest{
			Model:       req.Model,
			MaxTokens:   maxTokens,
			System:      req.SystemPrompt,
			Messages:    messages,
			Temperature: req.Temperature,
			Stream:      true,
		}

		jsonData, err := json.Marshal(body)
		if err != nil {
			errorChan <- fmt.Errorf("anthropic: failed to marshal request: %w", err)
			return
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/messages", bytes.NewReader(jsonData))
		if err != nil {
			errorChan <- fmt.Errorf("anthropic: failed to create request: %w", err)
			return
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-api-key", p.apiKey)
		httpReq.Header.Set("anthropic-version", anthropicAPIVersion)
		httpReq.Header.Set("Accept", "text/event-stream")

		resp, err := p.httpClient.Do(httpReq)
		if err != nil {
			errorChan <- fmt.Errorf("anthropic: request failed: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			errorChan <- fmt.Errorf("anthropic: API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" || data == "[DONE]" {
				continue
			}

			var evt anthropicStreamEvent
			if err := json.Unmarshal([]byte(data), &evt); err != nil {
				log.Printf("WARN: anthropic: skipping malformed stream event: %v", err)
				continue
			}
			if evt.Error != nil {
				errorChan <- fmt.Errorf("anthropic: API error: %s", evt.Error.Message)
				return
			}
			switch evt.Type {
			case "message_stop":
				return
			case "content_block_delta":
				if evt.Delta != nil && evt.Delta.Text != "" {
					select {
					case contentChan <- evt.Delta.Text:
					case <-ctx.Done():
						errorChan <- ctx.Err()
						return
					}
				}
			}
		}
		if err := scanner.Err(); err != nil {
			if ctx.Err() != nil {
				errorChan <- ctx.Err()
				return
			}
			errorChan <- fmt.Errorf("anthropic: stream read failed: %w", err)
		}
	}()

	return contentChan, errorChan
}
