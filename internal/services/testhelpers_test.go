package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/pablocarmonaesparza/education-sub001/internal/llm"
	"github.com/pablocarmonaesparza/education-sub001/internal/models"
	"github.com/pablocarmonaesparza/education-sub001/internal/store"
)

// fakeStore is an in-memory store.Store. Behavior is overridable per test
// through the function fields; unset fields fall back to the in-memory maps.
type fakeStore struct {
	mu            sync.Mutex
	users         map[string]*models.User
	conversations map[uuid.UUID]*models.Conversation
	messages      map[uuid.UUID][]models.Message

	profile    *models.UserProfile
	transcript string
	chunks     []models.DocumentChunk

	createConversationErr error
	appendMessageErr      error
	getProfileErr         error
	getTranscriptErr      error
}

var _ store.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[string]*models.User),
		conversations: make(map[uuid.UUID]*models.Conversation),
		messages:      make(map[uuid.UUID][]models.Message),
	}
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) CreateUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.Email] = user
	return nil
}

func (f *fakeStore) CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*models.Conversation, error) {
	if f.createConversationErr != nil {
		return nil, f.createConversationErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &models.Conversation{ID: uuid.New(), UserID: userID, Title: title}
	f.conversations[c.ID] = c
	return c, nil
}

func (f *fakeStore) GetConversation(ctx context.Context, id, userID uuid.UUID) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[id]
	if !ok || c.UserID != userID {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Conversation
	for _, c := range f.conversations {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) AppendMessage(ctx context.Context, conversationID uuid.UUID, role, content string) (*models.Message, error) {
	if f.appendMessageErr != nil {
		return nil, f.appendMessageErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m := models.Message{ID: uuid.New(), ConversationID: conversationID, Role: role, Content: content}
	f.messages[conversationID] = append(f.messages[conversationID], m)
	return &m, nil
}

func (f *fakeStore) ListMessages(ctx context.Context, conversationID, userID uuid.UUID, limit, offset int) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Message(nil), f.messages[conversationID]...), nil
}

func (f *fakeStore) GetUserProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	if f.getProfileErr != nil {
		return nil, f.getProfileErr
	}
	if f.profile == nil {
		return nil, store.ErrNotFound
	}
	return f.profile, nil
}

func (f *fakeStore) GetLessonTranscript(ctx context.Context, lessonID uuid.UUID) (string, error) {
	if f.getTranscriptErr != nil {
		return "", f.getTranscriptErr
	}
	return f.transcript, nil
}

func (f *fakeStore) GetAllDocumentChunks(ctx context.Context) ([]models.DocumentChunk, error) {
	return f.chunks, nil
}

// storedMessages returns the persisted messages of a conversation.
func (f *fakeStore) storedMessages(conversationID uuid.UUID) []models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Message(nil), f.messages[conversationID]...)
}

// fakeEmbedder returns a canned vector or error.
type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

// fakeSearcher returns canned documents.
type fakeSearcher struct {
	docs []models.RetrievedDocument
	err  error
}

func (f *fakeSearcher) Search(ctx context.Context, embedding []float32, limit int) ([]models.RetrievedDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

// fakeProvider replays deltas, then fails with err if set. When endless is
// true it keeps emitting deltas until the context is cancelled.
type fakeProvider struct {
	deltas  []string
	err     error
	endless bool

	mu      sync.Mutex
	lastReq llm.GenerationRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Stream(ctx context.Context, req llm.GenerationRequest) (<-chan string, <-chan error) {
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()

	contentChan := make(chan string, 100)
	errorChan := make(chan error, 1)
	go func() {
		defer close(contentChan)
		defer close(errorChan)
		for _, d := range f.deltas {
			select {
			case contentChan <- d:
			case <-ctx.Done():
				errorChan <- ctx.Err()
				return
			}
		}
		if f.endless {
			for i := 0; ; i++ {
				select {
				case contentChan <- fmt.Sprintf("delta-%d ", i):
				case <-ctx.Done():
					errorChan <- ctx.Err()
					return
				}
			}
		}
		if f.err != nil {
			errorChan <- f.err
		}
	}()
	return contentChan, errorChan
}

func (f *fakeProvider) request() llm.GenerationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}
