package conversation

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps conversations in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Conversation
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]*Conversation)}
}

func (m *MemoryRepository) Put(_ context.Context, c *Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[c.ID] = c.clone()
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, owner, id string) (*Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.items[id]
	if !ok || c.Owner != owner {
		return nil, ErrNotFound
	}
	return c.clone(), nil
}

func (m *MemoryRepository) List(_ context.Context, owner string) ([]Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Conversation{}
	for _, c := range m.items {
		if c.Owner != owner {
			continue
		}
		s := c.clone()
		s.Messages = nil
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (m *MemoryRepository) Delete(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.items[id]; ok && c.Owner == owner {
		delete(m.items, id)
	}
	return nil
}
