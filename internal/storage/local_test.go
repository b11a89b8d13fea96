package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return ls
}

func TestLocalStoreAndRetrieve(t *testing.T) {
	ctx := context.Background()
	ls := newTestStorage(t)
	ownerID := uuid.New()

	key, err := ls.Store(ctx, CategoryAnimalPhoto, ownerID, "bruno.jpg", strings.NewReader("jpeg bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "photos/"+ownerID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, "_bruno.jpg"))

	reader, err := ls.Retrieve(ctx, key)
	require.NoError(t, err)
	defer reader.Close()
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(content))

	exists, err := ls.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	url, err := ls.URL(ctx, key, 0)
	require.NoError(t, err)
	assert.Equal(t, "/files/"+key, url)
}

func TestLocalDelete(t *testing.T) {
	ctx := context.Background()
	ls := newTestStorage(t)

	key, err := ls.Store(ctx, CategoryMedicalDocument, uuid.New(), "report.pdf", strings.NewReader("pdf"), "application/pdf")
	require.NoError(t, err)

	require.NoError(t, ls.Delete(ctx, key))

	_, err = ls.Retrieve(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	// Deleting an already-gone object is not an error.
	assert.NoError(t, ls.Delete(ctx, key))
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	ls := newTestStorage(t)

	for _, key := range []string{
		"../outside.txt",
		"photos/../../etc/passwd",
		"..",
	} {
		_, err := ls.Retrieve(ctx, key)
		assert.Error(t, err, "key %q must not resolve", key)
		assert.NotErrorIs(t, err, ErrObjectNotFound)
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b_c.txt", sanitizeFilename("a/b\\c.txt"))
	assert.Equal(t, "_secret", sanitizeFilename("..secret"))
	assert.NotContains(t, sanitizeFilename(`x:*?"<>|y`), ":")
}
