// Package database defines the persistence port for content storage.
package database

import (
	"context"

	"github.com/atelier-cms/atelier/internal/domain/content"
)

// Store is the persistence interface for content sections.
type Store interface {
	// ListContent returns the items of a section ordered by order_index.
	ListContent(ctx context.Context, section string) ([]content.Item, error)

	// ReconcileSection atomically replaces the stored state of a section
	// with the given desired list and returns the canonical stored result.
	// An empty desired list deletes every item in the section.
	ReconcileSection(ctx context.Context, section string, desired []content.Item) ([]content.Item, error)
}
