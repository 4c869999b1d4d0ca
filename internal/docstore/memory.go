package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store, safe for concurrent use. ListErr and
// ReadErrs let tests simulate backend failures.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	updated map[string]time.Time

	ListErr  error
	ReadErrs map[string]error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:  make(map[string][]byte),
		updated:  make(map[string]time.Time),
		ReadErrs: make(map[string]error),
	}
}

// Put stores data under name, replacing any previous contents.
func (s *MemoryStore) Put(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[name] = append([]byte(nil), data...)
	s.updated[name] = time.Now()
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, prefix string) ([]Object, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var objects []Object
	for name, data := range s.objects {
		if strings.HasPrefix(name, prefix) {
			objects = append(objects, Object{Name: name, Size: int64(len(data)), Updated: s.updated[name]})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects, nil
}

// Read implements Store.
func (s *MemoryStore) Read(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.ReadErrs[name]; err != nil {
		return nil, err
	}
	data, ok := s.objects[name]
	if !ok {
		return nil, fmt.Errorf("Read: %s: %w", name, ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

// Write implements Store.
func (s *MemoryStore) Write(ctx context.Context, name string, data []byte, contentType string) error {
	s.Put(name, data)
	return nil
}

var _ Store = (*MemoryStore)(nil)
