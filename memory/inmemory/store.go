// Package inmemory provides process-local memory stores.
package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/KamdynS/petclinic-genai/memory"
)

// ConversationStore implements memory.ConversationStore interface
type ConversationStore struct {
	mu   sync.RWMutex
	data map[string][]memory.Message
}

// NewConversationStore creates a new in-memory conversation store
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		data: make(map[string][]memory.Message),
	}
}

func conversationKey(sessionID string) string {
	return fmt.Sprintf("conversation:%s", sessionID)
}

// AppendMessage implements memory.ConversationStore interface
func (cs *ConversationStore) AppendMessage(ctx context.Context, sessionID string, role, content string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	key := conversationKey(sessionID)
	cs.data[key] = append(cs.data[key], memory.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Unix(),
	})
	return nil
}

// GetMessages implements memory.ConversationStore interface
func (cs *ConversationStore) GetMessages(ctx context.Context, sessionID string) ([]memory.Message, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	msgs := cs.data[conversationKey(sessionID)]
	out := make([]memory.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// ClearSession implements memory.ConversationStore interface
func (cs *ConversationStore) ClearSession(ctx context.Context, sessionID string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.data, conversationKey(sessionID))
	return nil
}

var _ memory.ConversationStore = (*ConversationStore)(nil)
