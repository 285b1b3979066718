package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alfredjeanlab/eugenio/internal/model"
)

// Source supplies every item in the store. store.Store satisfies it.
type Source interface {
	ListAllItems(ctx context.Context) ([]*model.Item, error)
}

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version    string    `json:"version"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	ItemCount  int       `json:"item_count"`
	OwnerCount int       `json:"owner_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data *model.Item `json:"data"`
}

// ExportJSONL writes a header line and then one line per item, in the
// source's owner/creation order. It returns the number of items written.
func ExportJSONL(ctx context.Context, src Source, w io.Writer) (int, error) {
	items, err := src.ListAllItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("list items: %w", err)
	}

	owners := make(map[int64]struct{})
	for _, it := range items {
		owners[it.OwnerID] = struct{}{}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:    "1",
		Type:       "header",
		Timestamp:  time.Now().UTC(),
		ItemCount:  len(items),
		OwnerCount: len(owners),
	}); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	for _, it := range items {
		if err := enc.Encode(record{Type: "item", Data: it}); err != nil {
			return 0, fmt.Errorf("write item %s: %w", it.ID, err)
		}
	}
	return len(items), nil
}
