package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmtroyer/playferry/internal/repositories"
	"github.com/dmtroyer/playferry/internal/shared"
	"github.com/urfave/cli/v3"
)

// openCacheDB opens the configured cache database and ensures migrations ran.
func (r *Runner) openCacheDB() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// CacheStats prints entry count and age range of the search-result cache.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openCacheDB()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := repositories.NewSearchCacheRepository(db).Stats()
	if err != nil {
		return err
	}

	r.writePlainHeader("Search Cache")
	r.writePlain("Entries: %d\n", stats.Entries)
	if stats.Entries > 0 {
		r.writePlain("Oldest:  %s\n", stats.Oldest)
		r.writePlain("Newest:  %s\n", stats.Newest)
	}

	return nil
}

// CacheClear clears the search-result cache.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openCacheDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cleared, err := repositories.NewSearchCacheRepository(db).Clear()
	if err != nil {
		return err
	}

	r.logger.Info("cache cleared", "entries", cleared)
	r.writePlain("Cleared %d cached search results\n", cleared)
	return nil
}
