package db

import (
	"context"
	"io/fs"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/docstudio/internal/history"
	"github.com/jonathan/docstudio/internal/types"
)

var _ history.Store = (*HistoryStore)(nil)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(embedMigrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		data, err := fs.ReadFile(embedMigrations, "migrations/"+e.Name())
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(data), "-- +goose Up"), "%s has no Up section", e.Name())
		assert.True(t, strings.Contains(string(data), "-- +goose Down"), "%s has no Down section", e.Name())
	}
}

func TestHistoryStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	store := db.HistoryStore("test-" + uuid.NewString())
	defer func() { _ = store.Clear(ctx) }()

	data, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, store.Save(ctx, []byte(`[{"id":"one"}]`)))
	require.NoError(t, store.Save(ctx, []byte(`[{"id":"two"}]`)))

	data, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"two"}]`, string(data))

	require.NoError(t, store.Clear(ctx))
	data, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestHistoryStore_WithCache_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	store := db.HistoryStore("test-" + uuid.NewString())
	defer func() { _ = store.Clear(ctx) }()

	cache := history.NewCache(store)
	entry := cache.Add(ctx, types.GenerationResult{Content: "stored in postgres", Kind: types.KindText})

	reloaded := history.NewCache(store)
	reloaded.Load(ctx)
	got, err := reloaded.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "stored in postgres", got.Result.Content)
}
