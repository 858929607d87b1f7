package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() GenerationRequest {
	return GenerationRequest{
		Model:        "gpt-4o-mini",
		SystemPrompt: "You are a tutor.",
		Messages: []Message{
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "hi"},
			{Role: "user", Content: "explain interfaces"},
		},
		MaxTokens:   512,
		Temperature: 0.7,
	}
}

// drain collects every delta and the final error value from a Stream call.
func drain(t *testing.T, contentChan <-chan string, errorChan <-chan error) ([]string, error) {
	t.Helper()
	var deltas []string
	timeout := time.After(5 * time.Second)
	for {
		select {
		case d, ok := <-contentChan:
			if !ok {
				return deltas, <-errorChan
			}
			deltas = append(deltas, d)
		case <-timeout:
			t.Fatal("stream did not terminate")
		}
	}
}

func openAISSEHandler(t *testing.T, gotBody *openAIRequest, deltas []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(gotBody))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, d := range deltas {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", d)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}
}

func TestOpenAIStreamDeltas(t *testing.T) {
	var gotBody openAIRequest
	srv := httptest.NewServer(openAISSEHandler(t, &gotBody, []string{"Go ", "interfaces ", "are sets of methods"}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL)
	contentChan, errorChan := p.Stream(context.Background(), sampleRequest())
	deltas, err := drain(t, contentChan, errorChan)

	require.NoError(t, err)
	assert.Equal(t, []string{"Go ", "interfaces ", "are sets of methods"}, deltas)
}

func TestOpenAIRequestShape(t *testing.T) {
	var gotBody openAIRequest
	srv := httptest.NewServer(openAISSEHandler(t, &gotBody, nil))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL)
	contentChan, errorChan := p.Stream(context.Background(), sampleRequest())
	_, err := drain(t, contentChan, errorChan)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
	assert.True(t, gotBody.Stream)
	require.Len(t, gotBody.Messages, 4)
	assert.Equal(t, "system", gotBody.Messages[0].Role, "system prompt travels as the first message")
	assert.Equal(t, "You are a tutor.", gotBody.Messages[0].Content)
	assert.Equal(t, "user", gotBody.Messages[1].Role)
	assert.Equal(t, "assistant", gotBody.Messages[2].Role)
}

func TestOpenAIStreamNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "rate limited"}}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL)
	contentChan, errorChan := p.Stream(context.Background(), sampleRequest())
	deltas, err := drain(t, contentChan, errorChan)

	assert.Empty(t, deltas)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIStreamMissingAPIKey(t *testing.T) {
	p := NewOpenAIProvider("", "")
	contentChan, errorChan := p.Stream(context.Background(), sampleRequest())
	deltas, err := drain(t, contentChan, errorChan)

	assert.Empty(t, deltas)
	require.Error(t, err)
}

func TestOpenAIStreamCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n\n")
		w.(http.Flusher).Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	p := NewOpenAIProvider("test-key", srv.URL)
	contentChan, errorChan := p.Stream(ctx, sampleRequest())

	select {
	case d := <-contentChan:
		assert.Equal(t, "partial", d)
	case <-time.After(5 * time.Second):
		t.Fatal("no delta before cancellation")
	}
	cancel()

	_, err := drain(t, contentChan, errorChan)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
