package postgres

import (
	"database/sql"

	"github.com/alfredjeanlab/eugenio/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanItem scans a single row into a model.Item.
// The row must contain columns in the order defined by itemColumns.
func scanItem(row scannable) (*model.Item, error) {
	var it model.Item
	if err := row.Scan(&it.ID, &it.OwnerID, &it.Name, &it.Checked, &it.CreatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

func scanItems(rows *sql.Rows) ([]*model.Item, error) {
	defer rows.Close()
	items := []*model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
