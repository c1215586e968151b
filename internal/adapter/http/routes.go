package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router. Session
// enforcement happens in middleware; only stored media is exempted there.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Sections
		r.Get("/sections", h.ListSections)
		r.Get("/content/{section}", h.GetSectionContent)
		r.Put("/content/{section}", h.PutSectionContent)

		// Media
		r.Post("/media", h.UploadMedia)

		// Auth
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/me", h.Me)
	})

	// Stored images, referenced by image blocks.
	r.Get("/media/{name}", h.ServeMedia)
}
