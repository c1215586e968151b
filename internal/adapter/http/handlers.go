// Package http provides the HTTP handlers and routing for the Atelier API.
package http

import (
	"log/slog"

	"github.com/atelier-cms/atelier/internal/service"
)

// Handlers aggregates the services the HTTP layer exposes.
type Handlers struct {
	Content *service.ContentService
	Auth    *service.AuthService
	Media   *service.MediaService

	MaxUploadBytes int64
	Log            *slog.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(content *service.ContentService, auth *service.AuthService, media *service.MediaService, maxUploadBytes int64, log *slog.Logger) *Handlers {
	return &Handlers{
		Content:        content,
		Auth:           auth,
		Media:          media,
		MaxUploadBytes: maxUploadBytes,
		Log:            log,
	}
}
