package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicSSEHandler(t *testing.T, gotBody *anthropicRequest, deltas []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicAPIVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(gotBody))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: message_start\ndata: {\"type\":\"message_start\"}\n\n")
		for _, d := range deltas {
			fmt.Fprintf(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":%q}}\n\n", d)
		}
		fmt.Fprint(w, "event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n")
	}
}

func TestAnthropicStreamDeltas(t *testing.T) {
	var gotBody anthropicRequest
	srv := httptest.NewServer(anthropicSSEHandler(t, &gotBody, []string{"Channels ", "carry ", "values"}))
	defer srv.Close()

	p := NewAnthropicProvider("test-key", srv.URL)
	contentChan, errorChan := p.Stream(context.Background(), sampleRequest())
	deltas, err := drain(t, contentChan, errorChan)

	require.NoError(t, err)
	assert.Equal(t, []string{"Channels ", "carry ", "values"}, deltas)
}

func TestAnthropicRequestShape(t *testing.T) {
	var gotBody anthropicRequest
	srv := httptest.NewServer(anthropicSSEHandler(t, &gotBody, nil))
	defer srv.Close()

	p := NewAnthropicProvider("test-key", srv.URL)
	contentChan, errorChan := p.Stream(context.Background(), sampleRequest())
	_, err := drain(t, contentChan, errorChan)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
	assert.True(t, gotBody.Stream)
	assert.Equal(t, 512, gotBody.MaxTokens)
	assert.Equal(t, "You are a tutor.", gotBody.System, "system prompt travels as a top-level field")
	require.Len(t, gotBody.Messages, 3, "history holds only user and assistant turns")
	for _, m := range gotBody.Messages {
		assert.NotEqual(t, "system", m.Role)
	}
}

func TestAnthropicDefaultMaxTokens(t *testing.T) {
	var gotBody anthropicRequest
	srv := httptest.NewServer(anthropicSSEHandler(t, &gotBody, nil))
	defer srv.Close()

	req := sampleRequest()
	req.MaxTokens = 0
	p := NewAnthropicProvider("test-key", srv.URL)
	contentChan, errorChan := p.Stream(context.Background(), req)
	_, err := drain(t, contentChan, errorChan)
	require.NoError(t, err)

	assert.Equal(t, 4096, gotBody.MaxTokens)
}

func TestAnthropicStreamNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"type": "error", "error": {"type": "overloaded_error", "message": "Overloaded"}}`)
	}))
	defer srv.Close()

	p := NewAnthropicProvider("test-key", srv.URL)
	contentChan, errorChan := p.Stream(context.Background(), sampleRequest())
	deltas, err := drain(t, contentChan, errorChan)

	assert.Empty(t, deltas)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestAnthropicStreamInBandError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: error\ndata: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"Overloaded\"}}\n\n")
	}))
	defer srv.Close()

	p := NewAnthropicProvider("test-key", srv.URL)
	contentChan, errorChan := p.Stream(context.Background(), sampleRequest())
	_, err := drain(t, contentChan, errorChan)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Overloaded")
}

func TestAnthropicStreamMissingAPIKey(t *testing.T) {
	p := NewAnthropicProvider("", "")
	contentChan, errorChan := p.Stream(context.Background(), sampleRequest())
	deltas, err := drain(t, contentChan, errorChan)

	assert.Empty(t, deltas)
	require.Error(t, err)
}
