package model

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyName is returned when an item name is blank after trimming.
var ErrEmptyName = errors.New("item name is empty")

// Item is one entry on a user's shopping list.
type Item struct {
	ID        string    `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	Checked   bool      `json:"checked"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeName trims surrounding whitespace from a user-typed name. The
// rest of the text is kept exactly as typed.
func NormalizeName(s string) (string, error) {
	name := strings.TrimSpace(s)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// FindItem returns the item with the given id, or nil.
func FindItem(items []*Item, id string) *Item {
	for _, it := range items {
		if it.ID == id {
			return it
		}
	}
	return nil
}
