package inmemory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/KamdynS/petclinic-genai/memory/memorytest"
)

func TestConversationContract_InMemory(t *testing.T) {
	memorytest.RunConversationContract(t, NewConversationStore())
}

func TestVectorContract_InMemory(t *testing.T) {
	memorytest.RunVectorContract(t, NewVectorStore())
}

func TestConversationStore_ConcurrentAccess(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()
	sessionID := "test-session"

	done := make(chan bool)
	errs := make(chan error, 10)

	for i := 0; i < 3; i++ {
		go func(id int) {
			for j := 0; j < 10; j++ {
				role := "user"
				if j%2 == 1 {
					role = "assistant"
				}
				if err := store.AppendMessage(ctx, sessionID, role, fmt.Sprintf("goroutine %d iteration %d", id, j)); err != nil {
					errs <- err
					return
				}
			}
			done <- true
		}(i)
	}

	go func() {
		for i := 0; i < 30; i++ {
			if _, err := store.GetMessages(ctx, sessionID); err != nil {
				errs <- err
				return
			}
			time.Sleep(time.Microsecond)
		}
		done <- true
	}()

	completed := 0
	for completed < 4 {
		select {
		case err := <-errs:
			t.Errorf("Concurrent access error: %v", err)
		case <-done:
			completed++
		case <-time.After(5 * time.Second):
			t.Fatal("Test timed out")
		}
	}

	messages, err := store.GetMessages(ctx, sessionID)
	if err != nil {
		t.Errorf("Final GetMessages() error = %v", err)
	}
	if len(messages) != 30 {
		t.Errorf("Expected 30 messages after concurrent writes, got %d", len(messages))
	}
}

func TestGetMessagesReturnsCopy(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()
	_ = store.AppendMessage(ctx, "s", "user", "hello")

	msgs, _ := store.GetMessages(ctx, "s")
	msgs[0].Content = "changed"

	again, _ := store.GetMessages(ctx, "s")
	if again[0].Content != "hello" {
		t.Fatalf("stored message mutated through returned slice")
	}
}

func TestVectorStore_SkipsMismatchedDimensions(t *testing.T) {
	s := NewVectorStore()
	ctx := context.Background()
	if err := s.AddDocument(ctx, memoryDoc("a", 1, 0)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddDocument(ctx, memoryDoc("b", 1, 0, 0)); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := s.QuerySimilar(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected only same-dimension document, got %+v", got)
	}
	if err := s.AddDocument(ctx, memoryDoc("c")); err == nil {
		t.Fatalf("expected error for empty embedding")
	}
}
