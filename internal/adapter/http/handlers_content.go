package http

import (
	"net/http"

	"github.com/atelier-cms/atelier/internal/domain/content"
)

// contentEnvelope is the wire shape for section reads and writes.
type contentEnvelope struct {
	Content []content.Item `json:"content"`
}

// sectionsResponse lists the configured section keys.
type sectionsResponse struct {
	Sections []string `json:"sections"`
}

// ListSections handles GET /api/v1/sections
func (h *Handlers) ListSections(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, sectionsResponse{Sections: h.Content.Sections()})
}

// GetSectionContent handles GET /api/v1/content/{section}
func (h *Handlers) GetSectionContent(w http.ResponseWriter, r *http.Request) {
	section := urlParam(r, "section")
	items, err := h.Content.List(r.Context(), section)
	if err != nil {
		writeDomainError(w, err, "failed to load section")
		return
	}
	if items == nil {
		items = []content.Item{}
	}
	writeJSON(w, http.StatusOK, contentEnvelope{Content: items})
}

// PutSectionContent handles PUT /api/v1/content/{section}. The submitted list
// replaces the stored section; the canonical stored list is returned.
func (h *Handlers) PutSectionContent(w http.ResponseWriter, r *http.Request) {
	section := urlParam(r, "section")
	req, ok := readJSON[contentEnvelope](w, r)
	if !ok {
		return
	}

	items, err := h.Content.Reconcile(r.Context(), section, req.Content)
	if err != nil {
		writeDomainError(w, err, "failed to save section")
		return
	}
	if items == nil {
		items = []content.Item{}
	}
	writeJSON(w, http.StatusOK, contentEnvelope{Content: items})
}
