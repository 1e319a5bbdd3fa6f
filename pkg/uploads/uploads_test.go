package uploads_test

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"placereview/pkg/uploads"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["file"][0]
}

func TestStore_Save(t *testing.T) {
	store, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save(makeFileHeader(t, "picture.JPG", []byte("jpeg-bytes")))
	assert.NoError(t, err)

	content, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), content)

	// The stored name keeps only the lowercased extension.
	assert.Equal(t, ".jpg", filepath.Ext(path))
	assert.NotContains(t, filepath.Base(path), "picture")
}

func TestStore_SaveNamesNeverCollide(t *testing.T) {
	store, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Save(makeFileHeader(t, "same.png", []byte("one")))
	assert.NoError(t, err)
	second, err := store.Save(makeFileHeader(t, "same.png", []byte("two")))
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestStore_SaveIgnoresClientPath(t *testing.T) {
	store, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)

	// A traversal attempt in the client filename must not influence where
	// the file lands.
	path, err := store.Save(makeFileHeader(t, "../../../etc/passwd.png", []byte("x")))
	assert.NoError(t, err)
	assert.Equal(t, filepath.Clean(store.Dir()), filepath.Dir(filepath.Clean(path)))
}

func TestStore_SaveRejectsUnknownExtensions(t *testing.T) {
	store, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"evil.exe", "page.html", "noext", "double.png.sh"} {
		_, err := store.Save(makeFileHeader(t, name, []byte("x")))
		assert.ErrorIs(t, err, uploads.ErrUnsupportedExtension, name)
	}
}

func TestStore_Remove(t *testing.T) {
	store, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save(makeFileHeader(t, "picture.png", []byte("x")))
	require.NoError(t, err)

	assert.NoError(t, store.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_RemoveRejectsOutsidePaths(t *testing.T) {
	store, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)

	outside := filepath.Join(t.TempDir(), "other.png")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	assert.Error(t, store.Remove(outside))
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}
