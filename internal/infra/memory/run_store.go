package memory

import (
	"sync"

	"slide-quiz/internal/app"
)

// RunStore is an in-memory implementation of app.RunRegistry.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*app.Engine
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*app.Engine),
	}
}

func (s *RunStore) Register(id string, engine *app.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[id] = engine
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
	delete(s.runs, id)
}

func (s *RunStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
