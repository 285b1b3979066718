package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/alfredjeanlab/eugenio/internal/model"
)

// Store is the persistence interface for shopping-list items.
//
// Implementations own item identity and creation timestamps. Every method
// may block on the network; callers must not hold locks across calls.
type Store interface {
	// AddItem appends a new unchecked item for ownerID. The name is
	// trimmed; a blank name fails with ErrEmptyName.
	AddItem(ctx context.Context, ownerID int64, name string) (*model.Item, error)

	// ListItems returns ownerID's items ordered by creation time, ties
	// broken by store insertion order. Never truncated.
	ListItems(ctx context.Context, ownerID int64) ([]*model.Item, error)

	// SetChecked sets one item's checked flag. An unknown itemID is not
	// an error.
	SetChecked(ctx context.Context, itemID string, checked bool) error

	// SwapChecked sets the checked flag to newVal only if it currently
	// equals oldVal. It reports false when the stored value differed or
	// the item no longer exists.
	SwapChecked(ctx context.Context, itemID string, oldVal, newVal bool) (bool, error)

	// ClearAll deletes every item owned by ownerID. Clearing an empty
	// list succeeds.
	ClearAll(ctx context.Context, ownerID int64) error

	// ListAllItems returns every item in the store ordered by owner and
	// then creation order. Used for backups.
	ListAllItems(ctx context.Context) ([]*model.Item, error)

	Close() error
}

var (
	// ErrUnavailable marks transport failures and server-side faults.
	ErrUnavailable = errors.New("store unavailable")

	// ErrRejected marks requests the store refused as malformed.
	ErrRejected = errors.New("store rejected request")

	// ErrEmptyName is returned by AddItem for blank names.
	ErrEmptyName = fmt.Errorf("%w: %w", ErrRejected, model.ErrEmptyName)
)

// Classify names the failure class of err for logging.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRejected):
		return "rejected"
	case errors.Is(err, ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return "unavailable"
	default:
		return "unknown"
	}
}
