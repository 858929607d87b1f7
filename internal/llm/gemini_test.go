package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGeminiContentRenamesAssistantRole(t *testing.T) {
	c := toGeminiContent(Message{Role: "assistant", Content: "a reply"})
	assert.Equal(t, "model", c.Role)
	require.Len(t, c.Parts, 1)
	assert.Equal(t, genai.Text("a reply"), c.Parts[0])
}

func TestToGeminiContentKeepsUserRole(t *testing.T) {
	c := toGeminiContent(Message{Role: "user", Content: "a question"})
	assert.Equal(t, "user", c.Role)
	require.Len(t, c.Parts, 1)
	assert.Equal(t, genai.Text("a question"), c.Parts[0])
}
