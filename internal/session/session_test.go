package session_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tankobon/internal/logging"
	"tankobon/internal/session"
)

func TestGetCreatesSessionOnFirstInteraction(t *testing.T) {
	store := session.NewStore(t.TempDir(), logging.NewNop())

	sess := store.Get(42)
	if sess == nil || sess.UserID != 42 {
		t.Fatalf("unexpected session: %+v", sess)
	}
	sess.AddPending("/tmp/ch1.cbz")

	again := store.Get(42)
	if len(again.Pending) != 1 {
		t.Fatalf("session state not retained: %+v", again)
	}
}

func TestBeginIsSingleFlightPerUser(t *testing.T) {
	store := session.NewStore(t.TempDir(), logging.NewNop())

	if err := store.Begin(1); err != nil {
		t.Fatalf("first Begin: %v", err)
	}
	if err := store.Begin(1); !errors.Is(err, session.ErrRunActive) {
		t.Fatalf("expected ErrRunActive, got %v", err)
	}
	// A different user is unaffected.
	if err := store.Begin(2); err != nil {
		t.Fatalf("Begin for second user: %v", err)
	}

	store.End(1)
	if err := store.Begin(1); err != nil {
		t.Fatalf("Begin after End: %v", err)
	}
}

func TestBeginBlocksAcrossStoresSharingLockDir(t *testing.T) {
	dir := t.TempDir()
	first := session.NewStore(dir, logging.NewNop())
	second := session.NewStore(dir, logging.NewNop())

	if err := first.Begin(7); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := second.Begin(7); !errors.Is(err, session.ErrRunActive) {
		t.Fatalf("expected ErrRunActive from sibling store, got %v", err)
	}
	first.End(7)
	if err := second.Begin(7); err != nil {
		t.Fatalf("Begin after sibling End: %v", err)
	}
}

func TestEndWithoutBeginIsHarmless(t *testing.T) {
	store := session.NewStore(t.TempDir(), logging.NewNop())
	store.End(99)
}

func TestClearRemovesPendingArchives(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "ch1.cbz")
	if err := os.WriteFile(archive, []byte("x"), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	store := session.NewStore(dir, logging.NewNop())
	sess := store.Get(5)
	sess.Title = "Work"
	sess.AddPending(archive)

	store.Clear(5)
	if _, err := os.Stat(archive); !os.IsNotExist(err) {
		t.Fatal("pending archive should be deleted on Clear")
	}
	if fresh := store.Get(5); fresh.Title != "" || len(fresh.Pending) != 0 {
		t.Fatalf("expected a fresh session after Clear, got %+v", fresh)
	}
}
