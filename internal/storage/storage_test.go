package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/carereminder/internal/model"
)

func exerciseAdapter(t *testing.T, a Adapter) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := a.Get(ctx, KeyReminders)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Set(ctx, KeyReminders, `[{"id":"r1"}]`))
	require.NoError(t, a.Set(ctx, KeyReminders, `[{"id":"r2"}]`))

	got, ok, err := a.Get(ctx, KeyReminders)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"r2"}]`, got)

	_, ok, err = a.Get(ctx, KeyMedications)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLite(t *testing.T) {
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseAdapter(t, s)
}

func TestSQLiteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyAppointments, "[]"))
	require.NoError(t, s.Close())

	// Migrations already applied must be skipped.
	s, err = NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, ok, err := s.Get(ctx, KeyAppointments)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", got)
}

func TestKeyring(t *testing.T) {
	k := NewKeyring(keyring.NewArrayKeyring(nil))
	exerciseAdapter(t, k)

	require.NoError(t, k.Delete(context.Background(), KeyReminders))
	_, ok, err := k.Get(context.Background(), KeyReminders)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	a, closeFn, err := Open(model.StorageConfig{
		Backend: model.StorageSQLite,
		Path:    filepath.Join(dir, "nested", "reminders.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })
	assert.IsType(t, &SQLite{}, a)

	_, _, err = Open(model.StorageConfig{Backend: "etcd"})
	assert.Error(t, err)
}
