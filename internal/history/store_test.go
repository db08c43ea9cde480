package history

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	data, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, store.Save(ctx, []byte(`[{"id":"a"}]`)))
	data, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(data))

	require.NoError(t, store.Save(ctx, []byte(`[]`)))
	data, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	require.NoError(t, store.Clear(ctx))
	data, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, store.Clear(ctx), "clearing an empty slot is not an error")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	store := NewFileStore(path)
	exerciseStore(t, store)
	assert.Equal(t, path, store.Path())
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "history.json"))
	require.NoError(t, store.Save(context.Background(), []byte("[]")))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "history.json", files[0].Name())
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("skipping integration test: REDIS_ADDR not set")
	}
	db := 15
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		require.NoError(t, err)
		db = n
	}

	client, err := ConnectRedis(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), db)
	if err != nil {
		t.Skipf("skipping integration test: redis not reachable: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	store := NewRedisStore(client, "docstudio-test-history")
	t.Cleanup(func() { _ = store.Clear(context.Background()) })
	exerciseStore(t, store)
}

func TestNewRedisStore_DefaultKey(t *testing.T) {
	store := NewRedisStore(nil, "")
	assert.Equal(t, DefaultKey, store.key)
}
