package web

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestSessionStore(ttl time.Duration, max int) (*SessionStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := NewSessionStore(ttl, max, func(id string) *Session { return &Session{} })
	store.now = clock.Now
	return store, clock
}

func TestSessionStoreCreateGet(t *testing.T) {
	store, _ := newTestSessionStore(time.Minute, 10)

	sess := store.Create()
	if sess.ID == "" {
		t.Fatal("Create returned an empty id")
	}
	got, ok := store.Get(sess.ID)
	if !ok || got != sess {
		t.Fatalf("Get(%q) = %v, %v, want the created session", sess.ID, got, ok)
	}

	for _, id := range []string{"", "not-a-uuid", "6f1c7a8e-8f5e-4c1e-9a43-3b1d2f0c9e11"} {
		if _, ok := store.Get(id); ok {
			t.Errorf("Get(%q) ok = true, want false", id)
		}
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	store, clock := newTestSessionStore(time.Minute, 10)
	sess := store.Create()

	clock.Advance(50 * time.Second)
	if _, ok := store.Get(sess.ID); !ok {
		t.Fatal("session expired before its ttl")
	}

	// The lookup above refreshed it.
	clock.Advance(50 * time.Second)
	if _, ok := store.Get(sess.ID); !ok {
		t.Fatal("session expired although it was used")
	}

	clock.Advance(61 * time.Second)
	if _, ok := store.Get(sess.ID); ok {
		t.Error("idle session still live after ttl")
	}
	if store.Len() != 0 {
		t.Errorf("Len = %d, want 0", store.Len())
	}
}

func TestSessionStoreEviction(t *testing.T) {
	store, clock := newTestSessionStore(time.Hour, 2)

	a := store.Create()
	clock.Advance(time.Second)
	b := store.Create()
	clock.Advance(time.Second)
	store.Get(a.ID) // a is now the most recent
	c := store.Create()

	if store.Len() != 2 {
		t.Fatalf("Len = %d, want 2", store.Len())
	}
	if _, ok := store.Get(b.ID); ok {
		t.Error("least recently used session was not evicted")
	}
	for _, s := range []*Session{a, c} {
		if _, ok := store.Get(s.ID); !ok {
			t.Errorf("session %s evicted, want kept", s.ID)
		}
	}
}

func TestSessionStoreSweep(t *testing.T) {
	store, clock := newTestSessionStore(time.Minute, 10)

	old1 := store.Create()
	old2 := store.Create()
	clock.Advance(45 * time.Second)
	fresh := store.Create()
	clock.Advance(30 * time.Second)

	if n := store.Sweep(); n != 2 {
		t.Errorf("Sweep = %d, want 2", n)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
	if _, ok := store.Get(fresh.ID); !ok {
		t.Error("fresh session swept")
	}
	for _, s := range []*Session{old1, old2} {
		if _, ok := store.Get(s.ID); ok {
			t.Errorf("expired session %s still present", s.ID)
		}
	}
}

func TestSessionStoreNoTTL(t *testing.T) {
	store, clock := newTestSessionStore(0, 10)
	sess := store.Create()
	clock.Advance(24 * time.Hour)

	if n := store.Sweep(); n != 0 {
		t.Errorf("Sweep = %d, want 0", n)
	}
	if _, ok := store.Get(sess.ID); !ok {
		t.Error("session expired without a ttl")
	}
}

func TestRunSweeperStops(t *testing.T) {
	store, _ := newTestSessionStore(time.Minute, 10)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunSweeper did not return after cancel")
	}
}
