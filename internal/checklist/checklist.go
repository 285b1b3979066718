// Package checklist turns a list of items into toggle rows for an
// interactive chat keyboard.
package checklist

import (
	"strings"

	"github.com/alfredjeanlab/eugenio/internal/model"
)

const (
	GlyphChecked   = "✅"
	GlyphUnchecked = "⬜"

	actionPrefix = "toggle:"
)

// Row is one toggle button: what the user sees and what comes back when
// they press it.
type Row struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// Render builds one row per item, in input order.
func Render(items []*model.Item) []Row {
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, Row{
			Label:  Label(it),
			Action: Action(it.ID),
		})
	}
	return rows
}

// Label returns the glyph-prefixed display text for an item.
func Label(it *model.Item) string {
	glyph := GlyphUnchecked
	if it.Checked {
		glyph = GlyphChecked
	}
	return glyph + " " + it.Name
}

// Action encodes a toggle request for itemID.
func Action(itemID string) string {
	return actionPrefix + itemID
}

// ParseAction extracts the item ID from a toggle action token.
func ParseAction(token string) (string, bool) {
	id, ok := strings.CutPrefix(token, actionPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
