package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pablocarmonaesparza/education-sub001/internal/llm"
	"github.com/pablocarmonaesparza/education-sub001/internal/models"
	"github.com/pablocarmonaesparza/education-sub001/internal/registry"
	"github.com/pablocarmonaesparza/education-sub001/internal/store"
	"github.com/pablocarmonaesparza/education-sub001/internal/stream"
)

// ErrNoProvider is returned pre-stream when the resolved model maps to a
// provider no adapter was registered for. This is a wiring error, not a
// client error.
var ErrNoProvider = errors.New("no adapter registered for provider")

const (
	defaultMaxTokens   = 4096
	defaultTemperature = 0.7
	// persistTimeout bounds best-effort writes that race client disconnects.
	persistTimeout = 10 * time.Second
	// titleMaxRunes caps the lazily derived conversation title.
	titleMaxRunes = 80
)

// ChatService orchestrates one tutoring turn end to end: resolve model,
// ensure the conversation exists, persist the inbound message, assemble the
// personalized context, build the prompt, stream generation and persist the
// outbound message. All persistence is best-effort and never blocks or
// alters the client-visible stream.
type ChatService struct {
	store      store.Store
	registry   *registry.Registry
	providers  map[registry.ProviderID]llm.Provider
	contextSvc *ContextService
}

func NewChatService(s store.Store, reg *registry.Registry, providers map[registry.ProviderID]llm.Provider, contextSvc *ContextService) *ChatService {
	return &ChatService{
		store:      s,
		registry:   reg,
		providers:  providers,
		contextSvc: contextSvc,
	}
}

// StreamChat runs one turn and returns the chunk sequence for the client.
// An error return means nothing has been streamed yet and the caller may
// still answer with an HTTP status. Once the channel is returned, every
// later failure is reported in-band and the channel always ends with
// exactly one terminal chunk unless ctx is cancelled first.
func (s *ChatService) StreamChat(ctx context.Context, userID uuid.UUID, req models.ChatRequest) (<-chan stream.Chunk, error) {
	descriptor := s.registry.Resolve(req.Model)
	provider, ok := s.providers[descriptor.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoProvider, descriptor.Provider)
	}

	out := make(chan stream.Chunk, 8)
	go s.runTurn(ctx, out, userID, req, descriptor, provider)
	return out, nil
}

func (s *ChatService) runTurn(ctx context.Context, out chan<- stream.Chunk, userID uuid.UUID, req models.ChatRequest, descriptor registry.ModelDescriptor, provider llm.Provider) {
	defer close(out)

	latest := req.LatestUserMessage()
	conversationID, created := s.ensureConversation(ctx, userID, req, latest)

	if created {
		if !emit(ctx, out, stream.ConversationIDChunk(conversationID.String())) {
			return
		}
	}

	// The inbound message lands before generation begins.
	if conversationID != uuid.Nil && latest != "" {
		if _, err := s.store.AppendMessage(ctx, conversationID, models.RoleUser, latest); err != nil {
			log.Printf("WARN: failed to persist inbound message for conversation %s: %v", conversationID, err)
		}
	}

	userCtx, docs := s.contextSvc.Assemble(ctx, userID, latest)
	systemPrompt := BuildSystemPrompt(userCtx, docs)

	genReq := llm.GenerationRequest{
		Model:        descriptor.UpstreamName,
		SystemPrompt: systemPrompt,
		Messages:     toProviderMessages(req.Messages),
		MaxTokens:    defaultMaxTokens,
		Temperature:  defaultTemperature,
	}

	contentChan, errorChan := provider.Stream(ctx, genReq)

	var assembled strings.Builder
	for delta := range contentChan {
		assembled.WriteString(delta)
		if !emit(ctx, out, stream.TextChunk(delta)) {
			return
		}
	}

	if err := <-errorChan; err != nil {
		if ctx.Err() != nil {
			// Client is gone; nothing to report and nothing to persist.
			log.Printf("chat turn cancelled for user %s (conversation %s)", userID, conversationID)
			return
		}
		log.Printf("ERROR: generation failed via %s for conversation %s: %v", provider.Name(), conversationID, err)
		emit(ctx, out, stream.ErrorChunk(err.Error()))
		return
	}

	if !emit(ctx, out, stream.DoneChunk()) {
		return
	}

	// Outbound persistence happens only after the stream terminated with
	// done, detached from the request context so a disconnect right after
	// the final chunk cannot abort the write.
	if conversationID != uuid.Nil && assembled.Len() > 0 {
		persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()
		if _, err := s.store.AppendMessage(persistCtx, conversationID, models.RoleAssistant, assembled.String()); err != nil {
			log.Printf("WARN: failed to persist assistant message for conversation %s: %v", conversationID, err)
		}
	}
}

// ensureConversation resolves the turn's conversation id. A supplied id is
// verified for ownership; a missing id triggers lazy creation. Any failure
// is logged and the turn continues with no id, which disables persistence
// for this turn.
func (s *ChatService) ensureConversation(ctx context.Context, userID uuid.UUID, req models.ChatRequest, latest string) (uuid.UUID, bool) {
	if req.ConversationID != nil {
		conversation, err := s.store.GetConversation(ctx, *req.ConversationID, userID)
		if err != nil {
			log.Printf("WARN: conversation %s not usable for user %s: %v", *req.ConversationID, userID, err)
			return uuid.Nil, false
		}
		return conversation.ID, false
	}

	conversation, err := s.store.CreateConversation(ctx, userID, deriveTitle(latest))
	if err != nil {
		log.Printf("WARN: failed to create conversation for user %s: %v", userID, err)
		return uuid.Nil, false
	}
	return conversation.ID, true
}

// emit sends a chunk unless the client has gone away. Returns false when
// the turn should stop.
func emit(ctx context.Context, out chan<- stream.Chunk, c stream.Chunk) bool {
	select {
	case out <- c:
		return true
	case <-ctx.Done():
		return false
	}
}

func toProviderMessages(history []models.ChatMessage) []llm.Message {
	messages := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.Role != models.RoleUser && m.Role != models.RoleAssistant {
			continue
		}
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	return messages
}

// deriveTitle builds a deterministic conversation title from the first user
// message.
func deriveTitle(message string) string {
	title := strings.Join(strings.Fields(message), " ")
	if title == "" {
		return "New conversation"
	}
	if utf8.RuneCountInString(title) > titleMaxRunes {
		runes := []rune(title)
		title = string(runes[:titleMaxRunes]) + "…"
	}
	return title
}
