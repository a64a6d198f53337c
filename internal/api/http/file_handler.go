package http

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/storage"

	"github.com/gorilla/mux"
)

// FileHandler serves locally stored profile images.
type FileHandler struct {
	files storage.Storage
}

func NewFileHandler(files storage.Storage) *FileHandler {
	return &FileHandler{files: files}
}

func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	f, err := h.files.Open(key)
	if err != nil {
		respondError(w, r, domain.NotFound("file not found"))
		return
	}
	defer f.Close()

	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	io.Copy(w, f)
}
