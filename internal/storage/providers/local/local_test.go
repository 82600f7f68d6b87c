package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tulisify/tulisify/internal/storage"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(t.TempDir())
	require.NoError(t, err)
	return p
}

func TestProvider_UploadDownload(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	require.NoError(t, p.Upload(ctx, "covers/a.jpg", strings.NewReader("jpeg-bytes")))

	rc, err := p.Download(ctx, "covers/a.jpg")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "jpeg-bytes", string(data))

	exists, err := p.Exists(ctx, "covers/a.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	meta, err := p.GetMetadata(ctx, "covers/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(10), meta.Size)
	assert.Equal(t, "covers/a.jpg", meta.Path)
}

func TestProvider_UploadLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	require.NoError(t, p.Upload(ctx, "pdfs/b.pdf", strings.NewReader("one")))
	require.NoError(t, p.Upload(ctx, "pdfs/b.pdf", strings.NewReader("two")))

	entries, err := os.ReadDir(filepath.Join(p.Root(), "pdfs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b.pdf", entries[0].Name())
}

func TestProvider_RejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	for _, bad := range []string{"../outside.txt", "covers/../../x", "a\\b", ""} {
		err := p.Upload(ctx, bad, strings.NewReader("x"))
		assert.ErrorIs(t, err, storage.ErrInvalidPath, "path %q", bad)
	}

	_, err := p.Download(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, storage.ErrInvalidPath)
}

func TestProvider_MissingFiles(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	_, err := p.Download(ctx, "covers/none.jpg")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = p.List(ctx, "nowhere")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.NoError(t, p.Delete(ctx, "covers/none.jpg"))

	exists, err := p.Exists(ctx, "covers/none.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProvider_ListRecursive(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	require.NoError(t, p.Upload(ctx, "covers/1.jpg", strings.NewReader("a")))
	require.NoError(t, p.Upload(ctx, "pdfs/2.pdf", strings.NewReader("b")))

	files, err := storage.ListRecursive(ctx, p, "")
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{"covers/1.jpg", "pdfs/2.pdf"}, paths)

	require.NoError(t, p.Delete(ctx, "covers/1.jpg"))
	files, err = storage.ListRecursive(ctx, p, "covers")
	require.NoError(t, err)
	assert.Empty(t, files)
}
