package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"jeopardy-board/internal/game"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Controllers stay in a local map; their timers and subscribers are
//     process-bound.
//   - Redis holds a liveness marker per session that expires unless the
//     session sees activity within the TTL.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*game.Controller
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*game.Controller),
	}
}

func (s *SessionStore) Save(session *game.Controller) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ID()), "1", s.ttl).Err()
}

func (s *SessionStore) Get(sessionID string) (*game.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

// Touch extends the liveness marker.
func (s *SessionStore) Touch(sessionID string) {
	if s.ttl <= 0 {
		return
	}
	_ = s.client.Expire(context.Background(), s.key(sessionID), s.ttl).Err()
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

// Expired closes and forgets local sessions whose liveness marker is gone.
// It returns the ids removed.
func (s *SessionStore) Expired(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	var removed []string
	for _, id := range ids {
		n, err := s.client.Exists(ctx, s.key(id)).Result()
		if err != nil {
			return removed, err
		}
		if n > 0 {
			continue
		}
		s.mu.Lock()
		session, ok := s.sessions[id]
		delete(s.sessions, id)
		s.mu.Unlock()
		if ok {
			session.Close()
			removed = append(removed, id)
		}
	}
	return removed, nil
}

func (s *SessionStore) key(sessionID string) string {
	return "board:session:" + sessionID
}
