package postgres

import (
	"context"
	"database/sql"

	"github.com/alfredjeanlab/eugenio/internal/model"
)

// itemColumns is the column list used for SELECT statements on market_list.
const itemColumns = `id, telegram_user_id, product_name, checked, created_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryInsertItem(ctx context.Context, db executor, id string, ownerID int64, name string) (*model.Item, error) {
	row := db.QueryRowContext(ctx, `
		INSERT INTO market_list (id, telegram_user_id, product_name)
		VALUES ($1, $2, $3)
		RETURNING `+itemColumns,
		id, ownerID, name,
	)
	return scanItem(row)
}

func queryListItems(ctx context.Context, db executor, ownerID int64) ([]*model.Item, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM market_list
		WHERE telegram_user_id = $1
		ORDER BY created_at ASC, seq ASC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

func queryListAllItems(ctx context.Context, db executor) ([]*model.Item, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM market_list
		ORDER BY telegram_user_id ASC, created_at ASC, seq ASC`)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

func querySetChecked(ctx context.Context, db executor, id string, checked bool) (int64, error) {
	res, err := db.ExecContext(ctx, `UPDATE market_list SET checked = $2 WHERE id = $1`, id, checked)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func querySwapChecked(ctx context.Context, db executor, id string, oldVal, newVal bool) (bool, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE market_list SET checked = $3 WHERE id = $1 AND checked = $2`,
		id, oldVal, newVal,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func queryClearAll(ctx context.Context, db executor, ownerID int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM market_list WHERE telegram_user_id = $1`, ownerID)
	return err
}
