package main

import (
	"log/slog"

	"github.com/alfredjeanlab/eugenio/internal/config"
	"github.com/alfredjeanlab/eugenio/internal/store"
	"github.com/alfredjeanlab/eugenio/internal/store/memstore"
	"github.com/alfredjeanlab/eugenio/internal/store/postgres"
	"github.com/alfredjeanlab/eugenio/internal/store/postgrest"
)

// openStore connects to the backend named by cfg.Store.
func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Store {
	case config.StorePostgres:
		return postgres.New(cfg.DatabaseURL)
	case config.StoreMemory:
		return memstore.New(), nil
	default:
		return postgrest.New(postgrest.Config{
			BaseURL:    cfg.SupabaseURL,
			APIKey:     cfg.SupabaseKey,
			Table:      cfg.SupabaseTable,
			Timeout:    cfg.SupabaseTimeout,
			MaxRetries: cfg.SupabaseRetries,
		}, logger)
	}
}
