package stream

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWritesOneJSONLinePerChunk(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	require.NoError(t, enc.Encode(ConversationIDChunk("abc-123")))
	require.NoError(t, enc.Encode(TextChunk("hello")))
	require.NoError(t, enc.Encode(DoneChunk()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"type":"conversation_id","conversation_id":"abc-123"}`, lines[0])
	assert.JSONEq(t, `{"type":"text","text":"hello"}`, lines[1])
	assert.JSONEq(t, `{"type":"done"}`, lines[2])
}

func TestDecodeRoundTrip(t *testing.T) {
	chunks := []Chunk{
		ConversationIDChunk("id-1"),
		TextChunk("one"),
		TextChunk("two\nwith newline"),
		ErrorChunk("upstream exploded"),
	}

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, c := range chunks {
		require.NoError(t, enc.Encode(c))
	}

	decoded, err := NewDecoder(&buf).DecodeAll()
	require.NoError(t, err)
	assert.Equal(t, chunks, decoded)
}

func TestDecodeEOF(t *testing.T) {
	dec := NewDecoder(strings.NewReader(""))
	_, err := dec.Decode()
	assert.Equal(t, io.EOF, err)
}

func TestDecodeSkipsBlankLines(t *testing.T) {
	dec := NewDecoder(strings.NewReader("\n{\"type\":\"done\"}\n\n"))
	c, err := dec.Decode()
	require.NoError(t, err)
	assert.Equal(t, DoneChunk(), c)
}

func TestTerminal(t *testing.T) {
	assert.True(t, DoneChunk().Terminal())
	assert.True(t, ErrorChunk("x").Terminal())
	assert.False(t, TextChunk("x").Terminal())
	assert.False(t, ConversationIDChunk("x").Terminal())
}
