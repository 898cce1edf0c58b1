package redis

import (
	"context"
	"sync"
	"time"

	"slide-quiz/internal/app"

	"github.com/redis/go-redis/v9"
)

// RunStore is a Redis-aware implementation of app.RunRegistry.
// Notes:
//   - Engines live in a local map; timers and renderers are process bound.
//   - Redis carries a liveness marker per run so other instances and
//     operators can see which runs are active.
type RunStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	runs   map[string]*app.Engine
}

func NewRunStore(client *redis.Client, ttl time.Duration) *RunStore {
	return &RunStore{
		client: client,
		ttl:    ttl,
		runs:   make(map[string]*app.Engine),
	}
}

func (s *RunStore) Register(id string, engine *app.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[id] = engine
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(id), "1", s.ttl).Err()
}

func (s *RunStore) Get(id string) (*app.Engine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	engine, ok := s.runs[id]
	return engine, ok
}

func (s *RunStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return
	}
	delete(s.runs, id)
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

func (s *RunStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

func (s *RunStore) key(id string) string {
	return "quiz:run:" + id
}
