package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/pkg/config"
	"github.com/SongDrop/gitgptapi/pkg/logging"
	"github.com/SongDrop/gitgptapi/pkg/retry"
)

const defaultConnMaxLifetime = 30 * time.Minute

// Open prepares a connection pool for the catalog database. No connection is
// made until the pool is used; see Ping.
func Open(cfg *config.CatalogConfig) (*sql.DB, *Dialect, error) {
	dialect, err := LookupDialect(cfg.Driver)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(dialect.DriverName, dialect.DSN(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s catalog database: %w", dialect.Name, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	return db, dialect, nil
}

// Ping checks connectivity, retrying transient failures with backoff.
func Ping(ctx context.Context, db *sql.DB, retryCfg *retry.Config, logger *zap.Logger) error {
	attempt := 0
	err := retry.DoIfRetryable(ctx, retryCfg, func() error {
		attempt++
		if err := db.PingContext(ctx); err != nil {
			logger.Debug("Catalog database ping failed",
				zap.Int("attempt", attempt),
				zap.String("error", logging.SanitizeError(err)))
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to ping catalog database: %w", err)
	}
	return nil
}
