package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/skycast/internal/storage"
)

func TestOpen_File(t *testing.T) {
	s, err := storage.Open(context.Background(), storage.Config{
		Backend:  storage.BackendFile,
		FilePath: filepath.Join(t.TempDir(), "places.data"),
	})
	require.NoError(t, err)
	assert.IsType(t, &storage.FileStore{}, s)
}

func TestOpen_SQLite(t *testing.T) {
	s, err := storage.Open(context.Background(), storage.Config{
		Backend:    storage.BackendSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "places.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	assert.IsType(t, &storage.SQLiteStore{}, s)
}

func TestOpen_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := storage.Open(context.Background(), storage.Config{
		Backend:  storage.BackendRedis,
		RedisURL: "redis://" + mr.Addr(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	assert.IsType(t, &storage.RedisStore{}, s)
}

func TestOpen_Unknown(t *testing.T) {
	_, err := storage.Open(context.Background(), storage.Config{Backend: "etcd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}
