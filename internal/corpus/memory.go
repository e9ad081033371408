package corpus

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepository keeps documents in process memory. It backs tests and
// ephemeral demo sessions.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs map[string][]*Document
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: make(map[string][]*Document)}
}

func (m *MemoryRepository) Put(_ context.Context, doc *Document) error {
	cp := cloneDocument(doc, true)
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.docs[doc.Owner]
	for i, d := range list {
		if d.ID == doc.ID {
			list[i] = cp
			return nil
		}
	}
	m.docs[doc.Owner] = append(list, cp)
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, owner, id string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.docs[owner] {
		if d.ID == id {
			return cloneDocument(d, true), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) List(_ context.Context, owner string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Document, 0, len(m.docs[owner]))
	for _, d := range m.docs[owner] {
		out = append(out, *cloneDocument(d, false))
	}
	return out, nil
}

func (m *MemoryRepository) Delete(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[owner] = slices.DeleteFunc(m.docs[owner], func(d *Document) bool { return d.ID == id })
	return nil
}

func (m *MemoryRepository) Clear(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, owner)
	return nil
}

func (m *MemoryRepository) ListChunks(_ context.Context, owner string) ([]Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Chunk
	for _, d := range m.docs[owner] {
		for _, c := range d.Chunks {
			c.DocumentTitle = d.Title
			c.Embedding = slices.Clone(c.Embedding)
			out = append(out, c)
		}
	}
	return out, nil
}

func cloneDocument(d *Document, withChunks bool) *Document {
	cp := *d
	cp.Style.ComplexWords = slices.Clone(d.Style.ComplexWords)
	cp.Style.TransitionPhrases = slices.Clone(d.Style.TransitionPhrases)
	cp.Chunks = nil
	if withChunks {
		cp.Chunks = make([]Chunk, len(d.Chunks))
		for i, c := range d.Chunks {
			c.Embedding = slices.Clone(c.Embedding)
			cp.Chunks[i] = c
		}
	}
	return &cp
}
