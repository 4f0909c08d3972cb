package web

// sessions.go keeps one dashboard controller per browser.
//
// Sessions live in memory, keyed by a random UUID carried in a cookie. Every
// lookup moves the session to the front of an LRU list; the tail is evicted
// when MaxSessions is reached, and a background sweeper drops sessions idle
// for longer than the TTL.

import (
	"container/list"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/agrimap/internal/core"
	"github.com/JonMunkholm/agrimap/internal/render"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a request carries an unknown or expired
// session cookie.
var ErrSessionNotFound = errors.New("session not found")

// DefaultMaxSessions is used when the configured cap is not positive.
const DefaultMaxSessions = 1000

// Session is one browser's dashboard: a controller and the projections it drives.
type Session struct {
	ID         string
	Controller *core.Controller
	Dashboard  *render.Dashboard
	Created    time.Time

	lastSeen time.Time // guarded by SessionStore.mu
}

// SessionFactory builds the controller and projections for a new session.
type SessionFactory func(id string) *Session

// SessionStore is an in-memory, size-bounded session table.
type SessionStore struct {
	ttl     time.Duration
	max     int
	factory SessionFactory
	now     func() time.Time

	mu    sync.Mutex
	items map[string]*list.Element
	lru   *list.List // front is most recently used
}

// NewSessionStore creates a store. A zero ttl keeps sessions until evicted.
func NewSessionStore(ttl time.Duration, maxSessions int, factory SessionFactory) *SessionStore {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &SessionStore{
		ttl:     ttl,
		max:     maxSessions,
		factory: factory,
		now:     time.Now,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Create starts a new session, evicting the least recently used one if the
// store is full.
func (s *SessionStore) Create() *Session {
	id := uuid.New().String()
	sess := s.factory(id)
	sess.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess.Created = now
	sess.lastSeen = now

	for s.lru.Len() >= s.max {
		oldest := s.lru.Back()
		evicted := s.lru.Remove(oldest).(*Session)
		delete(s.items, evicted.ID)
		slog.Debug("session evicted", "session_id", evicted.ID)
	}
	s.items[id] = s.lru.PushFront(sess)
	return sess
}

// Get returns the live session for id and marks it used.
// Expired sessions are removed and reported as missing.
func (s *SessionStore) Get(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[id]
	if !ok {
		return nil, false
	}
	sess := el.Value.(*Session)
	now := s.now()
	if s.expired(sess, now) {
		s.lru.Remove(el)
		delete(s.items, id)
		return nil, false
	}
	sess.lastSeen = now
	s.lru.MoveToFront(el)
	return sess, true
}

// Len returns the number of stored sessions, expired or not.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

// Sweep removes every expired session and returns how many were removed.
func (s *SessionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	// The list is ordered by last use, so expired sessions sit at the back.
	for el := s.lru.Back(); el != nil; {
		sess := el.Value.(*Session)
		if !s.expired(sess, now) {
			break
		}
		prev := el.Prev()
		s.lru.Remove(el)
		delete(s.items, sess.ID)
		removed++
		el = prev
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (s *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.ttl <= 0 {
		return
	}
	slog.Debug("session sweeper started", "interval", interval, "ttl", s.ttl)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("session sweeper stopped")
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Info("expired sessions removed", "count", n, "live", s.Len())
			}
		}
	}
}

func (s *SessionStore) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl
}
