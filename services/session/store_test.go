package session

import (
	"sync"
	"testing"
	"time"

	"voicetable/models"
)

func TestCreateStartsInWelcome(t *testing.T) {
	store := NewMemorySessionStore()
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return start }
	store.NewID = func() string { return "sess-1" }

	sess := store.Create()
	if sess.ID != "sess-1" {
		t.Fatalf("expected injected id, got %q", sess.ID)
	}
	if sess.State != models.StateWelcome {
		t.Fatalf("expected WELCOME, got %q", sess.State)
	}
	if !sess.StartTimestamp.Equal(start) {
		t.Fatalf("expected injected start timestamp, got %v", sess.StartTimestamp)
	}
	if sess.Slots != (models.BookingSlots{}) {
		t.Fatalf("expected zeroed slots, got %+v", sess.Slots)
	}
	if sess.PhoneAttempts != 0 {
		t.Fatalf("expected zero phone attempts, got %d", sess.PhoneAttempts)
	}
}

func TestGetReturnsSameSession(t *testing.T) {
	store := NewMemorySessionStore()
	created := store.Create()

	got, ok := store.Get(created.ID)
	if !ok {
		t.Fatal("expected session to be found")
	}
	if got != created {
		t.Fatal("expected Get to return the same session pointer")
	}

	if _, ok := store.Get("missing"); ok {
		t.Fatal("expected unknown id to report not found")
	}
}

func TestDeleteEvicts(t *testing.T) {
	store := NewMemorySessionStore()
	sess := store.Create()

	store.Delete(sess.ID)
	if _, ok := store.Get(sess.ID); ok {
		t.Fatal("expected session to be gone after Delete")
	}
}

func TestConcurrentCreateAndGet(t *testing.T) {
	store := NewMemorySessionStore()

	var wg sync.WaitGroup
	ids := make([]string, 50)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = store.Create().ID
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = true
		if _, ok := store.Get(id); !ok {
			t.Fatalf("session %d not found after create", i)
		}
	}
}
