package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "k", []byte(`{"a":1}`)))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(v))

	require.NoError(t, s.Put(ctx, "k", []byte(`{"a":2}`)))
	v, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(v), "put overwrites")

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "k"), "deleting a missing key is not an error")
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exerciseStore(t, m)

	require.NoError(t, m.Close())
	_, err := m.Get(context.Background(), "k")
	require.ErrorIs(t, err, ErrClosed)
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "client.db")
	s, err := Open(context.Background(), "file:"+path)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(v))
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), "memory:")
	require.NoError(t, err)
	_, ok := s.(*Memory)
	assert.True(t, ok)
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("DRAFT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("DRAFT_TEST_POSTGRES_DSN not set")
	}
	s, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestPostgres_BadDSN(t *testing.T) {
	_, err := OpenPostgres(context.Background(), "postgres://%zz")
	require.Error(t, err)
}
