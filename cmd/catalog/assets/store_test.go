package assets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolworks/catalog/common/logger"
)

func newTestStore(t *testing.T, maxBytes int64) (*Store, string) {
	t.Helper()

	dir := t.TempDir()
	return NewStore(dir, maxBytes, logger.New("error", "json")), dir
}

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestSaveAcceptsPNG(t *testing.T) {
	store, dir := newTestStore(t, 5<<20)

	ref, err := store.Save(strings.NewReader("fake png bytes"), "photo.PNG", "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, "/uploads/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	entries := dirEntries(t, dir)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(ref), entries[0].Name())
}

func TestSaveRejectsDisallowedExtension(t *testing.T) {
	store, dir := newTestStore(t, 5<<20)

	_, err := store.Save(strings.NewReader("MZ..."), "payload.exe", "image/png")
	require.ErrorIs(t, err, ErrInvalidMediaType)

	// Nothing may be written for a rejected upload
	assert.Empty(t, dirEntries(t, dir))
}

func TestSaveRejectsDisallowedMediaType(t *testing.T) {
	store, dir := newTestStore(t, 5<<20)

	_, err := store.Save(strings.NewReader("bytes"), "photo.png", "application/octet-stream")
	require.ErrorIs(t, err, ErrInvalidMediaType)
	assert.Empty(t, dirEntries(t, dir))
}

func TestSaveAcceptsMediaTypeWithParams(t *testing.T) {
	store, _ := newTestStore(t, 5<<20)

	_, err := store.Save(strings.NewReader("bytes"), "photo.jpg", "image/jpeg; charset=binary")
	require.NoError(t, err)
}

func TestSaveEnforcesSizeCap(t *testing.T) {
	store, dir := newTestStore(t, 8)

	_, err := store.Save(strings.NewReader("123456789"), "big.png", "image/png")
	require.ErrorIs(t, err, ErrTooLarge)
	assert.Empty(t, dirEntries(t, dir), "oversized partial write must be removed")

	// Exactly at the cap is fine
	_, err = store.Save(strings.NewReader("12345678"), "ok.png", "image/png")
	require.NoError(t, err)
}

func TestGeneratedNamesAreUnique(t *testing.T) {
	store, dir := newTestStore(t, 5<<20)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		ref, err := store.Save(strings.NewReader("x"), "a.gif", "image/gif")
		require.NoError(t, err)
		assert.False(t, seen[ref])
		seen[ref] = true
	}

	assert.Len(t, dirEntries(t, dir), 20)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, dir := newTestStore(t, 5<<20)

	ref, err := store.Save(strings.NewReader("bytes"), "photo.webp", "image/webp")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ref))
	assert.Empty(t, dirEntries(t, dir))

	// Deleting a missing file is not an error
	require.NoError(t, store.Delete(ref))
}

func TestDeleteIgnoresExternalRefs(t *testing.T) {
	store, _ := newTestStore(t, 5<<20)

	require.NoError(t, store.Delete("https://cdn.example.com/img.png"))
	require.NoError(t, store.Delete(""))
}

func TestDeleteCannotEscapeAssetDir(t *testing.T) {
	store, dir := newTestStore(t, 5<<20)

	outside := filepath.Join(filepath.Dir(dir), "victim.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o644))

	require.NoError(t, store.Delete("/uploads/../victim.txt"))

	_, err := os.Stat(outside)
	assert.NoError(t, err, "file outside the asset dir must survive")
}

func TestOwns(t *testing.T) {
	store, _ := newTestStore(t, 5<<20)

	assert.True(t, store.Owns("/uploads/abc.png"))
	assert.False(t, store.Owns("https://cdn.example.com/img.png"))
	assert.False(t, store.Owns(""))
	assert.False(t, store.Owns("/uploads"))
}
