package http

import (
	"errors"
	"io"
	"net/http"
)

type uploadResponse struct {
	Path string `json:"path"`
}

// UploadMedia handles POST /api/v1/media. The body is a multipart form with
// a single "file" part.
func (h *Handlers) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close() //nolint:errcheck // read-only handle

	path, err := h.Media.Upload(r.Context(), header.Header.Get("Content-Type"), file)
	if err != nil {
		writeDomainError(w, err, "failed to store upload")
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{Path: path})
}

// ServeMedia handles GET /media/{name} for stored images.
func (h *Handlers) ServeMedia(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	rc, err := h.Media.Open(r.Context(), name)
	if err != nil {
		writeDomainError(w, err, "media not found")
		return
	}
	defer rc.Close() //nolint:errcheck // read-only handle

	if _, err := io.Copy(w, rc); err != nil {
		h.Log.Error("failed to stream media", "name", name, "error", err)
	}
}
