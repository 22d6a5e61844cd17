package repository

import (
	"context"
	"sync"
	"time"

	"github.com/impactreport/impact/backend/go-services/internal/content"
)

// MemoryStore is an in-memory Store used by tests and when no database is
// configured.
type MemoryStore struct {
	mu    sync.RWMutex
	store map[string]map[string]content.Fields
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{store: make(map[string]map[string]content.Fields), now: time.Now}
}

func (m *MemoryStore) FindBySlug(ctx context.Context, collection, slug string) (content.Fields, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.store[collection][slug]; ok {
		return d.Clone(), nil
	}
	return nil, nil
}

func (m *MemoryStore) UpsertBySlug(ctx context.Context, collection, slug string, fields content.Fields) (content.Fields, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.store[collection]
	if !ok {
		col = make(map[string]content.Fields)
		m.store[collection] = col
	}
	d, ok := col[slug]
	if !ok {
		d = content.Fields{content.FieldID: collection + ":" + slug}
		col[slug] = d
	}
	for k, v := range fields.Clone() {
		d[k] = v
	}
	d[content.FieldSlug] = slug
	d[content.FieldUpdatedAt] = m.now().UTC()
	return d.Clone(), nil
}
