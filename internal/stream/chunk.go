// Package stream defines the chunked wire protocol spoken to chat clients:
// newline-delimited JSON, one Chunk per line, in emission order. Every
// well-formed stream ends with exactly one terminal chunk (done or error);
// a conversation_id chunk appears at most once and only as the first chunk.
package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ChunkType tags the variants of the Chunk union.
type ChunkType string

const (
	ChunkConversationID ChunkType = "conversation_id"
	ChunkText           ChunkType = "text"
	ChunkDone           ChunkType = "done"
	ChunkError          ChunkType = "error"
)

// Chunk is one unit of the streaming response. Exactly one of the optional
// fields is populated, selected by Type.
type Chunk struct {
	Type           ChunkType `json:"type"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Text           string    `json:"text,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// Terminal reports whether this chunk ends the stream.
func (c Chunk) Terminal() bool {
	return c.Type == ChunkDone || c.Type == ChunkError
}

// ConversationIDChunk announces the id of a conversation created this turn.
func ConversationIDChunk(id string) Chunk {
	return Chunk{Type: ChunkConversationID, ConversationID: id}
}

// TextChunk carries one text increment from the upstream provider.
func TextChunk(text string) Chunk {
	return Chunk{Type: ChunkText, Text: text}
}

// DoneChunk signals successful completion of a stream.
func DoneChunk() Chunk {
	return Chunk{Type: ChunkDone}
}

// ErrorChunk signals in-band failure after streaming has begun.
func ErrorChunk(message string) Chunk {
	return Chunk{Type: ChunkError, Error: message}
}

// Encoder writes chunks to an io.Writer as newline-delimited JSON. When the
// writer is an http.Flusher each chunk is flushed immediately so increments
// reach the client as soon as they are produced.
type Encoder struct {
	w       io.Writer
	flusher http.Flusher
}

// NewEncoder wraps w. If w also implements http.Flusher, Encode flushes
// after every chunk.
func NewEncoder(w io.Writer) *Encoder {
	enc := &Encoder{w: w}
	if f, ok := w.(http.Flusher); ok {
		enc.flusher = f
	}
	return enc
}

// Encode writes a single chunk followed by a newline.
func (e *Encoder) Encode(c Chunk) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal chunk: %w", err)
	}
	data = append(data, '\n')
	if _, err := e.w.Write(data); err != nil {
		return fmt.Errorf("failed to write chunk: %w", err)
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}

// Decoder reads newline-delimited chunks from an io.Reader. Used by tests
// and by any Go client consuming the stream.
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder wraps r.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Decoder{scanner: scanner}
}

// Decode returns the next chunk, or io.EOF when the stream is exhausted.
func (d *Decoder) Decode() (Chunk, error) {
	for d.scanner.Scan() {
		line := d.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var c Chunk
		if err := json.Unmarshal(line, &c); err != nil {
			return Chunk{}, fmt.Errorf("failed to parse chunk line: %w", err)
		}
		return c, nil
	}
	if err := d.scanner.Err(); err != nil {
		return Chunk{}, err
	}
	return Chunk{}, io.EOF
}

// DecodeAll drains the stream and returns every remaining chunk.
func (d *Decoder) DecodeAll() ([]Chunk, error) {
	var chunks []Chunk
	for {
		c, err := d.Decode()
		if err == io.EOF {
			return chunks, nil
		}
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, c)
	}
}
