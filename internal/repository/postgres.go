package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements Store on the composer_snapshots table.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore creates a PostgreSQL snapshot store.
func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a snapshot by key.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM composer_snapshots WHERE key = $1`,
		key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to fetch snapshot", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return value, nil
}

// Set upserts a snapshot.
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO composer_snapshots (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		s.logger.Error("Failed to store snapshot", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	s.logger.Debug("Snapshot stored", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

// Delete removes a snapshot. Deleting a missing key is not an error.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM composer_snapshots WHERE key = $1`, key); err != nil {
		s.logger.Error("Failed to delete snapshot", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// PurgeDraftsOlderThan removes draft snapshots not written since cutoff and
// returns the number removed. Last-order snapshots are kept.
func (s *PostgresStore) PurgeDraftsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM composer_snapshots WHERE updated_at < $1 AND (key = $2 OR key LIKE $3)`,
		cutoff, DraftKey, "%:"+DraftKey,
	)
	if err != nil {
		return 0, fmt.Errorf("purge drafts: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge drafts: %w", err)
	}
	s.logger.Info("Drafts purged", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	return n, nil
}

// RunMigrations applies the embedded schema migrations to db.
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
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
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("Migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
