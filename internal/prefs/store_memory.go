package prefs

import (
	"context"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string]map[string]string)}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Close() error { return nil }

func (s *MemStore) Get(ctx context.Context, scope, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[scope][key]
	return v, ok, nil
}

func (s *MemStore) Set(ctx context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv, ok := s.m[scope]
	if !ok {
		kv = make(map[string]string)
		s.m[scope] = kv
	}
	kv[key] = value
	return nil
}
