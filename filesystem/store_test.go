package filesystem_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankcohen/cloudcity"
	"github.com/frankcohen/cloudcity/filesystem"
)

func newStore(t *testing.T) (*filesystem.Store, string) {
	t.Helper()
	tempDir := t.TempDir()
	root, err := os.OpenRoot(tempDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })
	return filesystem.NewFileStorage(root), tempDir
}

func TestStore_Stat(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("12345"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	ctx := context.Background()

	file, err := store.Stat(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", file.Name)
	assert.False(t, file.IsDir)
	assert.Equal(t, int64(5), file.Size)

	sub, err := store.Stat(ctx, "sub")
	require.NoError(t, err)
	assert.True(t, sub.IsDir)

	root, err := store.Stat(ctx, ".")
	require.NoError(t, err)
	assert.True(t, root.IsDir)

	_, err = store.Stat(ctx, "missing")
	assert.ErrorIs(t, err, cloudcity.ErrNotFound)
}

func TestStore_ReadDir(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "B.txt"), []byte("bb"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cloudcity-upload-inflight"), []byte("partial"), 0o644))

	entries, err := store.ReadDir(context.Background(), ".")
	require.NoError(t, err)

	byName := map[string]cloudcity.DirEntry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.Len(t, byName, 3)
	assert.True(t, byName["subdir"].IsDir)
	assert.Equal(t, int64(2), byName["B.txt"].Size)
	assert.NotContains(t, byName, ".cloudcity-upload-inflight")
}

func TestStore_ReadDir_NotFound(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.ReadDir(context.Background(), "nope")
	assert.ErrorIs(t, err, cloudcity.ErrNotFound)
}

func TestStore_ReadDir_SymlinkToDir(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "real"), 0o755))
	if err := os.Symlink("real", filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	entries, err := store.ReadDir(context.Background(), ".")
	require.NoError(t, err)
	for _, e := range entries {
		assert.True(t, e.IsDir, e.Name)
	}
}

func TestStore_Open(t *testing.T) {
	store, dir := newStore(t)
	content := []byte("test content")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.txt"), content, 0o644))

	ctx := context.Background()
	result, err := store.Open(ctx, "test.txt")
	require.NoError(t, err)

	readContent, err := io.ReadAll(result)
	assert.NoError(t, err)
	assert.Equal(t, content, readContent)
	assert.NoError(t, result.Close())

	_, err = store.Open(ctx, "nonexistent.txt")
	assert.ErrorIs(t, err, cloudcity.ErrNotFound)
}

func TestStore_Open_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := store.Open(ctx, "test.txt")
	assert.Nil(t, result)
	assert.Equal(t, context.Canceled, err)
}

func TestStore_Open_SymlinkEscape(t *testing.T) {
	store, dir := newStore(t)
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret"), []byte("s"), 0o644))
	if err := os.Symlink(filepath.Join(outside, "secret"), filepath.Join(dir, "escape")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	_, err := store.Open(context.Background(), "escape")
	assert.Error(t, err)
}

func TestStore_Write_Success(t *testing.T) {
	store, dir := newStore(t)

	n, err := store.Write(context.Background(), "test.txt", bytes.NewReader([]byte("test content")))
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	data, err := os.ReadFile(filepath.Join(dir, "test.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("test content"), data)
}

func TestStore_Write_WithSubdirectory(t *testing.T) {
	store, dir := newStore(t)

	n, err := store.Write(context.Background(), "subdir/nested/test.txt", bytes.NewReader([]byte("nested content")))
	require.NoError(t, err)
	assert.Equal(t, int64(14), n)

	data, err := os.ReadFile(filepath.Join(dir, "subdir", "nested", "test.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("nested content"), data)
}

func TestStore_Write_Overwrite(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("old old old"), 0o644))

	_, err := store.Write(context.Background(), "a.txt", strings.NewReader("new"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

type failingReader struct {
	data []byte
	err  error
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, r.err
	}
	r.done = true
	return copy(p, r.data), nil
}

func TestStore_Write_SourceErrorLeavesNothing(t *testing.T) {
	store, dir := newStore(t)
	sourceErr := errors.New("client went away")

	_, err := store.Write(context.Background(), "partial.bin", &failingReader{data: []byte("half"), err: sourceErr})
	assert.ErrorIs(t, err, sourceErr)
	assert.NotErrorIs(t, err, cloudcity.ErrIO)

	_, statErr := os.Stat(filepath.Join(dir, "partial.bin"))
	assert.True(t, os.IsNotExist(statErr))

	leftovers, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temp file should be removed")
}

func TestStore_Write_ContextCanceledBefore(t *testing.T) {
	store, dir := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Write(ctx, "test.txt", strings.NewReader("x"))
	assert.Equal(t, context.Canceled, err)

	_, statErr := os.Stat(filepath.Join(dir, "test.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

type cancelingReader struct {
	cancel context.CancelFunc
	reads  int
}

func (r *cancelingReader) Read(p []byte) (int, error) {
	r.reads++
	if r.reads == 2 {
		r.cancel()
	}
	return copy(p, "chunk"), nil
}

func TestStore_Write_ContextCanceledDuring(t *testing.T) {
	store, dir := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := store.Write(ctx, "test.txt", &cancelingReader{cancel: cancel})
	assert.ErrorIs(t, err, context.Canceled)

	leftovers, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, leftovers)
}

func TestStore_Delete(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))

	ctx := context.Background()
	require.NoError(t, store.Delete(ctx, "a.txt"))

	_, statErr := os.Stat(filepath.Join(dir, "a.txt"))
	assert.True(t, os.IsNotExist(statErr))

	assert.ErrorIs(t, store.Delete(ctx, "a.txt"), cloudcity.ErrNotFound)
}

func TestStore_Touch(t *testing.T) {
	store, dir := newStore(t)
	target := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0o644))
	old := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(target, old, old))

	now := time.Now().Truncate(time.Second)
	require.NoError(t, store.Touch(context.Background(), "a.txt", now))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(now), "mtime %v want %v", info.ModTime(), now)

	assert.ErrorIs(t, store.Touch(context.Background(), "missing.txt", now), cloudcity.ErrNotFound)
}

func TestStore_MkdirAll(t *testing.T) {
	store, dir := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.MkdirAll(ctx, "files/sub"))
	info, err := os.Stat(filepath.Join(dir, "files", "sub"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.NoError(t, store.MkdirAll(ctx, "."))
	assert.NoError(t, store.MkdirAll(ctx, "files"))
}

func TestStore_CleanupTemp(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "files", "sub"), 0o755))

	stale := filepath.Join(dir, "files", ".cloudcity-upload-stale")
	staleNested := filepath.Join(dir, "files", "sub", ".cloudcity-upload-nested")
	fresh := filepath.Join(dir, "files", ".cloudcity-upload-fresh")
	keep := filepath.Join(dir, "files", "keep.txt")
	for _, p := range []string{stale, staleNested, fresh, keep} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	old := time.Now().Add(-2 * time.Hour)
	for _, p := range []string{stale, staleNested, keep} {
		require.NoError(t, os.Chtimes(p, old, old))
	}

	removed, err := store.CleanupTemp(context.Background(), ".", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	for _, p := range []string{stale, staleNested} {
		_, statErr := os.Stat(p)
		assert.True(t, os.IsNotExist(statErr), p)
	}
	for _, p := range []string{fresh, keep} {
		_, statErr := os.Stat(p)
		assert.NoError(t, statErr, p)
	}
}

func TestStore_CleanupTemp_MissingDir(t *testing.T) {
	store, _ := newStore(t)

	removed, err := store.CleanupTemp(context.Background(), "files", time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}
