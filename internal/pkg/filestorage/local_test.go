package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestSaveAndDeleteFile(t *testing.T) {
	root := t.TempDir()
	ls, err := NewLocalStorage(root, "")
	require.NoError(t, err)

	info, err := ls.SaveFile(multipartHeader(t, "transcript.PDF", []byte("%PDF-1.4")), "applications/7")
	require.NoError(t, err)
	assert.Equal(t, "transcript.PDF", info.OriginalName)
	assert.Equal(t, int64(8), info.FileSize)
	assert.Equal(t, ".pdf", filepath.Ext(info.StoragePath))
	assert.Contains(t, info.URL, "/uploads/applications/7/")

	_, err = os.Stat(filepath.Join(root, info.StoragePath))
	require.NoError(t, err)

	require.NoError(t, ls.DeleteFile(info.StoragePath))
	_, err = os.Stat(filepath.Join(root, info.StoragePath))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ls.DeleteFile(info.StoragePath))
}

func TestSaveFileRejectsUnsupportedType(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = ls.SaveFile(multipartHeader(t, "script.sh", []byte("echo")), "x")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveFileKeepsUploadsInsideRoot(t *testing.T) {
	root := t.TempDir()
	ls, err := NewLocalStorage(root, "https://files.campus.edu/")
	require.NoError(t, err)

	info, err := ls.SaveFile(multipartHeader(t, "photo.png", []byte("png")), "../../etc")
	require.NoError(t, err)
	assert.Contains(t, info.URL, "https://files.campus.edu/etc/")
	_, err = os.Stat(filepath.Join(root, info.StoragePath))
	assert.NoError(t, err)
}
