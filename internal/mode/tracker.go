// Package mode tracks which users are currently in insert mode.
//
// A user in insert mode has their next free-text messages interpreted as
// new list items. Membership lives only in memory: it is set by the
// enter-mode command, cleared by the exit-mode command, never expires,
// and is lost when the process restarts.
package mode

import (
	"sort"
	"sync"
	"time"
)

// Entry is a snapshot of one user's insert-mode membership.
type Entry struct {
	OwnerID   int64     `json:"owner_id"`
	EnteredAt time.Time `json:"entered_at"`
	IdleSecs  float64   `json:"idle_secs"` // seconds since entering
}

// Tracker is a concurrency-safe set of owner IDs in insert mode.
// The zero value is not usable; construct with New.
type Tracker struct {
	mu     sync.RWMutex
	owners map[int64]time.Time
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{owners: make(map[int64]time.Time)}
}

// Enter marks ownerID as in insert mode. Entering twice keeps the
// original entry time.
func (t *Tracker) Enter(ownerID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.owners[ownerID]; !ok {
		t.owners[ownerID] = time.Now()
	}
}

// Exit clears insert mode for ownerID. Exiting when not entered is a no-op.
func (t *Tracker) Exit(ownerID int64) {
	t.mu.Lock()
	delete(t.owners, ownerID)
	t.mu.Unlock()
}

// IsActive reports whether ownerID is in insert mode.
func (t *Tracker) IsActive(ownerID int64) bool {
	t.mu.RLock()
	_, ok := t.owners[ownerID]
	t.mu.RUnlock()
	return ok
}

// Len returns the number of users in insert mode.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.owners)
}

// Active returns a snapshot of all users in insert mode, most recently
// entered first.
func (t *Tracker) Active() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := time.Now()
	entries := make([]Entry, 0, len(t.owners))
	for owner, at := range t.owners {
		entries = append(entries, Entry{
			OwnerID:   owner,
			EnteredAt: at,
			IdleSecs:  now.Sub(at).Seconds(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].EnteredAt.Equal(entries[j].EnteredAt) {
			return entries[i].OwnerID < entries[j].OwnerID
		}
		return entries[i].EnteredAt.After(entries[j].EnteredAt)
	})
	return entries
}
