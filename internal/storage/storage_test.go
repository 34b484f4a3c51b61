package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	for in, want := range map[string]string{
		"packages/a.zip":  "packages/a.zip",
		"/packages/a.zip": "packages/a.zip",
		`packages\a.zip`:  "packages/a.zip",
	} {
		got, err := CleanKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, bad := range []string{"", " ", ".", "../etc/passwd", "packages/../../x", "a/./b"} {
		_, err := CleanKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
	assert.Equal(t, "packages/abc.zip", PackageKey("abc"))
}

func roundTrip(t *testing.T, s BlobStore) {
	t.Helper()
	key, err := s.Put(PackageKey("q1"), strings.NewReader("zip-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "packages/q1.zip", key)

	// overwrite
	_, err = s.Put(key, strings.NewReader("zip-bytes-v2"))
	require.NoError(t, err)

	rc, err := s.Get(key)
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "zip-bytes-v2", string(b))

	_, err = s.Get(PackageKey("missing"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Put("../escape", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = s.Get("../escape")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestFSStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFSStore(dir)
	require.NoError(t, err)
	roundTrip(t, s)

	_, err = os.Stat(filepath.Join(dir, "packages", "q1.zip"))
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(dir, "packages"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	u, err := s.URL(PackageKey("q1"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "file://"))
	assert.True(t, strings.HasSuffix(u, "/packages/q1.zip"))
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	roundTrip(t, s)
	u, err := s.URL("packages/q1.zip")
	require.NoError(t, err)
	assert.Equal(t, "mem://packages/q1.zip", u)
}
