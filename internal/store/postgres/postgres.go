// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"

	"github.com/alfredjeanlab/eugenio/internal/idgen"
	"github.com/alfredjeanlab/eugenio/internal/model"
	"github.com/alfredjeanlab/eugenio/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db, logger: slog.Default()}, nil
}

// NewWithDB wraps an already-open database without running migrations.
func NewWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, logger: slog.Default()}
}

// SetLogger replaces the logger used for non-fatal anomalies.
func (s *PostgresStore) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) AddItem(ctx context.Context, ownerID int64, name string) (*model.Item, error) {
	name, err := model.NormalizeName(name)
	if err != nil {
		return nil, store.ErrEmptyName
	}
	id, err := idgen.NewItemID()
	if err != nil {
		return nil, fmt.Errorf("add item: %w: %w", store.ErrUnavailable, err)
	}
	it, err := queryInsertItem(ctx, s.db, id, ownerID, name)
	if err != nil {
		return nil, fmt.Errorf("add item: %w", classify(err))
	}
	return it, nil
}

func (s *PostgresStore) ListItems(ctx context.Context, ownerID int64) ([]*model.Item, error) {
	items, err := queryListItems(ctx, s.db, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", classify(err))
	}
	return items, nil
}

func (s *PostgresStore) ListAllItems(ctx context.Context) ([]*model.Item, error) {
	items, err := queryListAllItems(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list all items: %w", classify(err))
	}
	return items, nil
}

func (s *PostgresStore) SetChecked(ctx context.Context, itemID string, checked bool) error {
	n, err := querySetChecked(ctx, s.db, itemID, checked)
	if err != nil {
		return fmt.Errorf("set checked: %w", classify(err))
	}
	if n == 0 {
		s.logger.Warn("postgres: set checked matched no rows", "item", itemID)
	}
	return nil
}

func (s *PostgresStore) SwapChecked(ctx context.Context, itemID string, oldVal, newVal bool) (bool, error) {
	ok, err := querySwapChecked(ctx, s.db, itemID, oldVal, newVal)
	if err != nil {
		return false, fmt.Errorf("swap checked: %w", classify(err))
	}
	return ok, nil
}

func (s *PostgresStore) ClearAll(ctx context.Context, ownerID int64) error {
	if err := queryClearAll(ctx, s.db, ownerID); err != nil {
		return fmt.Errorf("clear items: %w", classify(err))
	}
	return nil
}

// classify wraps err with store.ErrRejected for data/constraint/syntax
// errors (SQLSTATE classes 22, 23, 42) and store.ErrUnavailable otherwise.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "22", "23", "42":
			return fmt.Errorf("%w: %w", store.ErrRejected, err)
		}
	}
	return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
}
