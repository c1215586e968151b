// Package service holds the application services between HTTP and storage.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/atelier-cms/atelier/internal/adapter/otel"
	"github.com/atelier-cms/atelier/internal/domain/content"
	"github.com/atelier-cms/atelier/internal/port/cache"
	"github.com/atelier-cms/atelier/internal/port/database"
)

// ContentService reads sections and reconciles editor submissions against
// stored state.
type ContentService struct {
	sections *content.Sections
	store    database.Store
	cache    cache.Cache
	metrics  *otel.Metrics
	log      *slog.Logger
}

// NewContentService creates a new content service.
func NewContentService(sections *content.Sections, store database.Store, c cache.Cache, metrics *otel.Metrics, log *slog.Logger) *ContentService {
	return &ContentService{
		sections: sections,
		store:    store,
		cache:    c,
		metrics:  metrics,
		log:      log,
	}
}

// Sections returns the configured section keys.
func (s *ContentService) Sections() []string {
	return s.sections.Keys()
}

// List returns the items of a section in display order. Reads are served
// from cache when a fresh entry exists.
func (s *ContentService) List(ctx context.Context, section string) ([]content.Item, error) {
	if err := s.sections.Require(section); err != nil {
		return nil, err
	}
	s.metrics.SectionReads.Add(ctx, 1)

	key := cacheKey(section)
	if data, ok := s.cache.Get(key); ok {
		var items []content.Item
		if err := json.Unmarshal(data, &items); err == nil {
			s.metrics.SectionCacheHits.Add(ctx, 1)
			return items, nil
		}
		// A corrupt entry falls through to the store.
		s.cache.Delete(key)
	}

	items, err := s.store.ListContent(ctx, section)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(items); err == nil {
		s.cache.Set(key, data)
	}
	return items, nil
}

// Reconcile validates and normalizes the submitted items, drops empty ones,
// reassigns dense order indexes from array position, and atomically replaces
// the stored section. The canonical stored list is returned.
func (s *ContentService) Reconcile(ctx context.Context, section string, submitted []content.Item) ([]content.Item, error) {
	if err := s.sections.Require(section); err != nil {
		return nil, err
	}

	ctx, span := otel.StartReconcileSpan(ctx, section, len(submitted))
	defer span.End()
	start := time.Now()

	desired := make([]content.Item, 0, len(submitted))
	for i := range submitted {
		it := submitted[i]
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		it.Normalize()
		if content.IsEmpty(it.Type, it.Content) {
			continue
		}
		it.Section = section
		it.OrderIndex = len(desired)
		desired = append(desired, it)
	}

	items, err := s.store.ReconcileSection(ctx, section, desired)
	if err != nil {
		s.metrics.ReconcileFailures.Add(ctx, 1)
		return nil, err
	}

	s.cache.Delete(cacheKey(section))
	s.metrics.Reconciles.Add(ctx, 1)
	s.metrics.ItemsWritten.Add(ctx, int64(len(items)))
	s.metrics.ReconcileDuration.Record(ctx, time.Since(start).Seconds())
	s.log.Info("section reconciled",
		"section", section,
		"submitted", len(submitted),
		"stored", len(items))

	return items, nil
}

func cacheKey(section string) string {
	return "section:" + section
}
