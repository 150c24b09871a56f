package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/secrets"
)

func openTestStore(t *testing.T, path string, opts ...Option) *Store {
	t.Helper()
	s, err := Open(path, nil, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("", nil)
	assert.Error(t, err)
}

func TestStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "nested", "secrets.db"))

	_, err := s.Get(ctx, "api_key")
	assert.ErrorIs(t, err, secrets.ErrNotFound)

	require.NoError(t, s.Set(ctx, "api_key", "first"))
	require.NoError(t, s.Set(ctx, "api_key", "second"))
	v, err := s.Get(ctx, "api_key")
	require.NoError(t, err)
	assert.Equal(t, "second", v)

	require.NoError(t, s.Set(ctx, "analytics_key", "x"))
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"analytics_key", "api_key"}, keys)

	require.NoError(t, s.Delete(ctx, "api_key"))
	require.NoError(t, s.Delete(ctx, "api_key"))
	_, err = s.Get(ctx, "api_key")
	assert.ErrorIs(t, err, secrets.ErrNotFound)

	assert.Error(t, s.Set(ctx, "  ", "blank key"))
}

func TestOpen_FileIsOwnerOnly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix file modes")
	}
	path := filepath.Join(t.TempDir(), "secrets.db")
	openTestStore(t, path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loose := filepath.Join(t.TempDir(), "loose.db")
	require.NoError(t, os.WriteFile(loose, nil, 0o644))
	require.NoError(t, os.Chmod(loose, 0o644))
	openTestStore(t, loose)

	info, err = os.Stat(loose)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_ServicesAreIsolated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "secrets.db")

	a := openTestStore(t, path)
	require.NoError(t, a.Set(ctx, "token", "a"))
	require.NoError(t, a.Close())

	b := openTestStore(t, path, WithService("com.example.other"))
	_, err := b.Get(ctx, "token")
	assert.ErrorIs(t, err, secrets.ErrNotFound)
	require.NoError(t, b.Close())

	reopened := openTestStore(t, path)
	v, err := reopened.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "a", v)
}

func TestStore_BacksConfigLoad(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "secrets.db"))

	lookup := func(key string) (string, bool) {
		if key == "API_KEY" {
			return "ci-key", true
		}
		return "", false
	}
	_, err := secrets.Load(ctx, s, lookup, false)
	require.NoError(t, err)

	cfg, err := secrets.Load(ctx, s, func(string) (string, bool) { return "", false }, false)
	require.NoError(t, err)
	assert.Equal(t, "ci-key", cfg.APIKey)
}
