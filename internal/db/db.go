// Package db provides PostgreSQL storage for the generation history slot.
package db

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate applies pending migrations. Migrations are embedded in the binary.
func (db *DB) Migrate(ctx context.Context) error {
	sqlDB := stdlib.OpenDBFromPool(db.pool)
	defer sqlDB.Close()

	goose.SetBaseFS(embedMigrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// HistoryStore keeps one named history slot in the history_slots table.
type HistoryStore struct {
	db   *DB
	name string
}

// HistoryStore returns the slot called name.
func (db *DB) HistoryStore(name string) *HistoryStore {
	return &HistoryStore{db: db, name: name}
}

// Load returns the slot content, or nil if the slot has never been saved.
func (s *HistoryStore) Load(ctx context.Context) ([]byte, error) {
	var content []byte
	err := s.db.pool.QueryRow(ctx,
		`SELECT content FROM history_slots WHERE name = $1`,
		s.name,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load history slot %s: %w", s.name, err)
	}
	return content, nil
}

// Save replaces the slot content.
func (s *HistoryStore) Save(ctx context.Context, data []byte) error {
	_, err := s.db.pool.Exec(ctx,
		`INSERT INTO history_slots (name, content)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET content = $2, updated_at = NOW()`,
		s.name, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save history slot %s: %w", s.name, err)
	}
	return nil
}

// Clear deletes the slot.
func (s *HistoryStore) Clear(ctx context.Context) error {
	_, err := s.db.pool.Exec(ctx, `DELETE FROM history_slots WHERE name = $1`, s.name)
	if err != nil {
		return fmt.Errorf("failed to clear history slot %s: %w", s.name, err)
	}
	return nil
}
