package upload

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler stores uploaded media files on local disk and hands back the URL
// they will be served under.
type Handler struct {
	dir     string
	maxSize int64
	logger  *zap.SugaredLogger
}

func NewHandler(dir string, maxSize int64, logger *zap.SugaredLogger) *Handler {
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	return &Handler{dir: dir, maxSize: maxSize, logger: logger}
}

// Save handles POST /{type}: a multipart form whose file field is named after
// the path segment (image, pdf, audio, file). The stored name is a uuid plus
// the original base name, so uploads never collide or traverse paths.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	fieldName := r.PathValue("type")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)
	file, header, err := r.FormFile(fieldName)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "No file uploaded"})
		return
	}
	defer file.Close()

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		h.logger.Errorw("create upload dir failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "File upload failed"})
		return
	}

	name := uuid.NewString() + "-" + filepath.Base(header.Filename)
	dst, err := os.Create(filepath.Join(h.dir, name))
	if err != nil {
		h.logger.Errorw("create upload file failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "File upload failed"})
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		h.logger.Errorw("write upload failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "File upload failed"})
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	url := fmt.Sprintf("%s://%s/uploads/%s", scheme, r.Host, name)
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "url": url})
}

// Dir returns the storage directory, for mounting the static file server.
func (h *Handler) Dir() string { return h.dir }

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
