package memory

import (
	"testing"

	"jeopardy-board/internal/game"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	session := game.NewController("board-1", game.Options{})
	defer session.Close()

	store.Save(session)
	got, ok := store.Get("board-1")
	if !ok || got != session {
		t.Fatalf("expected session present")
	}
	store.Touch("board-1")
	if store.Len() != 1 {
		t.Fatalf("expected one session, got %d", store.Len())
	}

	store.Delete("board-1")
	if _, ok := store.Get("board-1"); ok {
		t.Fatalf("expected session removed")
	}
}
