package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/serroba/shortlink/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
// It enforces the one-ACTIVE-entry-per-code rule under its lock.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]shortener.ShortURL // id -> entry
	active  map[shortener.Code]string     // code -> id of the ACTIVE entry
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]shortener.ShortURL),
		active:  make(map[shortener.Code]string),
	}
}

func (m *MemoryStore) FindActiveByCode(_ context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.active[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	entry := m.entries[id]

	return &entry, nil
}

func (m *MemoryStore) ExistsActiveByCode(_ context.Context, code shortener.Code) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.active[code]

	return ok, nil
}

func (m *MemoryStore) FindByID(_ context.Context, id string) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &entry, nil
}

func (m *MemoryStore) Save(_ context.Context, shortURL *shortener.ShortURL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if shortURL.ID != "" {
		if _, ok := m.entries[shortURL.ID]; !ok {
			return fmt.Errorf("update %s: %w", shortURL.ID, shortener.ErrNotFound)
		}
	}

	holder, taken := m.active[shortURL.Code]
	if shortURL.IsActive() && taken && holder != shortURL.ID {
		return shortener.ErrAlreadyExists
	}

	if shortURL.ID == "" {
		shortURL.ID = uuid.NewString()
	}

	m.entries[shortURL.ID] = *shortURL

	switch {
	case shortURL.IsActive():
		m.active[shortURL.Code] = shortURL.ID
	case taken && holder == shortURL.ID:
		delete(m.active, shortURL.Code)
	}

	return nil
}

func (m *MemoryStore) ListActiveByOwner(
	_ context.Context,
	owner string,
	req shortener.PageRequest,
) (shortener.Page[shortener.ShortURL], error) {
	return m.listActive(req, func(entry shortener.ShortURL) bool { return entry.OwnedBy(owner) }), nil
}

func (m *MemoryStore) ListActive(
	_ context.Context,
	req shortener.PageRequest,
) (shortener.Page[shortener.ShortURL], error) {
	return m.listActive(req, func(shortener.ShortURL) bool { return true }), nil
}

func (m *MemoryStore) listActive(
	req shortener.PageRequest,
	keep func(shortener.ShortURL) bool,
) shortener.Page[shortener.ShortURL] {
	m.mu.RLock()

	matched := make([]shortener.ShortURL, 0, len(m.active))
	for _, id := range m.active {
		if entry := m.entries[id]; keep(entry) {
			matched = append(matched, entry)
		}
	}

	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}

		return matched[i].ID < matched[j].ID
	})

	return paginate(matched, req)
}

func paginate[T any](items []T, req shortener.PageRequest) shortener.Page[T] {
	req = req.Normalize()
	total := int64(len(items))

	start := min(req.Offset(), len(items))
	end := min(start+req.Size, len(items))

	return shortener.NewPage(items[start:end], req, total)
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
