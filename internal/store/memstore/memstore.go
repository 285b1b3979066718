// Package memstore implements store.Store in process memory. Data is lost
// on restart; it backs local development and tests.
package memstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/alfredjeanlab/eugenio/internal/idgen"
	"github.com/alfredjeanlab/eugenio/internal/model"
	"github.com/alfredjeanlab/eugenio/internal/store"
)

type entry struct {
	item model.Item
	seq  uint64
}

// MemStore is a mutex-guarded map of items keyed by ID.
type MemStore struct {
	mu    sync.Mutex
	items map[string]*entry
	seq   uint64
	now   func() time.Time

	logger *slog.Logger
}

var _ store.Store = (*MemStore)(nil)

// New returns an empty store.
func New() *MemStore {
	return &MemStore{
		items:  make(map[string]*entry),
		now:    time.Now,
		logger: slog.Default(),
	}
}

// SetLogger replaces the logger used for non-fatal anomalies.
func (s *MemStore) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *MemStore) AddItem(ctx context.Context, ownerID int64, name string) (*model.Item, error) {
	name, err := model.NormalizeName(name)
	if err != nil {
		return nil, store.ErrEmptyName
	}
	id, err := idgen.NewItemID()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	e := &entry{
		item: model.Item{
			ID:        id,
			OwnerID:   ownerID,
			Name:      name,
			CreatedAt: s.now().UTC(),
		},
		seq: s.seq,
	}
	s.items[id] = e
	out := e.item
	return &out, nil
}

func (s *MemStore) ListItems(ctx context.Context, ownerID int64) ([]*model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(e *entry) bool { return e.item.OwnerID == ownerID }), nil
}

func (s *MemStore) ListAllItems(ctx context.Context) ([]*model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(*entry) bool { return true }), nil
}

// collect copies matching items sorted by owner, created_at, seq.
// Caller must hold s.mu.
func (s *MemStore) collect(match func(*entry) bool) []*model.Item {
	var entries []*entry
	for _, e := range s.items {
		if match(e) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.item.OwnerID != b.item.OwnerID {
			return a.item.OwnerID < b.item.OwnerID
		}
		if !a.item.CreatedAt.Equal(b.item.CreatedAt) {
			return a.item.CreatedAt.Before(b.item.CreatedAt)
		}
		return a.seq < b.seq
	})
	out := make([]*model.Item, 0, len(entries))
	for _, e := range entries {
		it := e.item
		out = append(out, &it)
	}
	return out
}

func (s *MemStore) SetChecked(ctx context.Context, itemID string, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[itemID]
	if !ok {
		s.logger.Warn("memstore: set checked matched no rows", "item", itemID)
		return nil
	}
	e.item.Checked = checked
	return nil
}

func (s *MemStore) SwapChecked(ctx context.Context, itemID string, oldVal, newVal bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[itemID]
	if !ok || e.item.Checked != oldVal {
		return false, nil
	}
	e.item.Checked = newVal
	return true, nil
}

func (s *MemStore) ClearAll(ctx context.Context, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.items {
		if e.item.OwnerID == ownerID {
			delete(s.items, id)
		}
	}
	return nil
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }
