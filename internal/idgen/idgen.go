// Package idgen generates item IDs for backends that assign their own.
//
// IDs are short, URL-safe, and fit comfortably inside a chat button's
// callback payload.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// ItemPrefix is prepended to every generated item ID.
const ItemPrefix = "it-"

// alphabet leaves out ':' so IDs never clash with action token framing.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters after the prefix.
const Length = 12

// NewItemID returns a fresh item ID.
func NewItemID() (string, error) {
	id, err := nanoid.Generate(alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return ItemPrefix + id, nil
}
