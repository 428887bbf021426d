package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func doUpload(t *testing.T, h *Handler, field, filename, content string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	body, contentType := multipartBody(t, field, filename, content)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/upload/{type}", h.Save)
	req := httptest.NewRequest(http.MethodPost, "/api/upload/"+field, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestSaveStoresFile(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(dir, 1<<20, zap.NewNop().Sugar())

	rec, out := doUpload(t, h, "image", "photo.png", "png-bytes")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["success"])
	url, _ := out["url"].(string)
	require.Contains(t, url, "/uploads/")
	assert.True(t, strings.HasSuffix(url, "-photo.png"))

	name := url[strings.LastIndex(url, "/")+1:]
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

// Two uploads of the same filename must not collide.
func TestSaveUniqueNames(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(dir, 1<<20, zap.NewNop().Sugar())

	_, out1 := doUpload(t, h, "pdf", "guide.pdf", "one")
	_, out2 := doUpload(t, h, "pdf", "guide.pdf", "two")

	assert.NotEqual(t, out1["url"], out2["url"])
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

// The stored name keeps only the base of the client filename.
func TestSaveStripsPathFromFilename(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(dir, 1<<20, zap.NewNop().Sugar())

	_, out := doUpload(t, h, "file", "../../etc/passwd", "nope")

	url, _ := out["url"].(string)
	assert.True(t, strings.HasSuffix(url, "-passwd"))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), "..")
}

// The file field must be named after the upload type in the path.
func TestSaveMissingFile(t *testing.T) {
	h := NewHandler(t.TempDir(), 1<<20, zap.NewNop().Sugar())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/upload/{type}", h.Save)
	body, contentType := multipartBody(t, "wrong-field", "photo.png", "png-bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "No file uploaded", out["message"])
}

func TestSaveOverSizeLimit(t *testing.T) {
	h := NewHandler(t.TempDir(), 64, zap.NewNop().Sugar())

	rec, out := doUpload(t, h, "image", "big.png", strings.Repeat("x", 4096))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, out["success"])
}
