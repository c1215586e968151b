package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/atelier-cms/atelier/internal/adapter/otel"
	"github.com/atelier-cms/atelier/internal/domain"
	"github.com/atelier-cms/atelier/internal/port/media"
)

// allowedImageTypes maps accepted upload MIME types to their extension.
var allowedImageTypes = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// MediaService stores uploaded images under opaque names.
type MediaService struct {
	store   media.Store
	metrics *otel.Metrics
}

// NewMediaService creates a new media service.
func NewMediaService(store media.Store, metrics *otel.Metrics) *MediaService {
	return &MediaService{store: store, metrics: metrics}
}

// Upload stores an image blob under a fresh random name and returns the
// public path to reference from image blocks.
func (s *MediaService) Upload(ctx context.Context, contentType string, r io.Reader) (string, error) {
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: unsupported upload type %q", domain.ErrValidation, contentType)
	}

	name := uuid.NewString() + ext
	ctx, span := otel.StartUploadSpan(ctx, name, contentType)
	defer span.End()

	path, err := s.store.Put(ctx, name, contentType, r)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	s.metrics.MediaUploads.Add(ctx, 1)
	return path, nil
}

// Open returns a reader over a stored image.
func (s *MediaService) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.store.Open(ctx, name)
}

// Delete removes a stored image.
func (s *MediaService) Delete(ctx context.Context, name string) error {
	return s.store.Delete(ctx, name)
}
