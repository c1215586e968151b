package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-cms/atelier/internal/domain/content"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ListContent returns the items of a section ordered by order_index.
// Legacy image payloads are normalized to the canonical JSON shape on read.
func (s *Store) ListContent(ctx context.Context, section string) ([]content.Item, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, section, content_type, content, order_index, created_at, updated_at
		 FROM content_items
		 WHERE section = $1
		 ORDER BY order_index ASC, id ASC`, section)
	if err != nil {
		return nil, fmt.Errorf("list content for %s: %w", section, err)
	}

	items, err := collectItems(rows)
	if err != nil {
		return nil, fmt.Errorf("list content for %s: %w", section, err)
	}
	return items, nil
}

// ReconcileSection replaces the stored state of a section with desired inside
// a single transaction. Items carrying a known ID are updated, items without
// one (or with an unrecognized ID) are inserted fresh, and stored items absent
// from desired are deleted. An advisory lock serializes concurrent saves of
// the same section. The canonical stored list is re-read and returned.
func (s *Store) ReconcileSection(ctx context.Context, section string, desired []content.Item) ([]content.Item, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reconcile for %s: %w", section, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, section); err != nil {
		return nil, fmt.Errorf("lock section %s: %w", section, err)
	}

	keep := make([]int64, 0, len(desired))
	for i := range desired {
		it := &desired[i]
		if it.ID > 0 {
			tag, err := tx.Exec(ctx,
				`UPDATE content_items
				 SET content_type = $2, content = $3, order_index = $4, updated_at = now()
				 WHERE id = $1 AND section = $5`,
				it.ID, it.Type, it.Content, it.OrderIndex, section)
			if err != nil {
				return nil, fmt.Errorf("update item %d in %s: %w", it.ID, section, err)
			}
			if tag.RowsAffected() > 0 {
				keep = append(keep, it.ID)
				continue
			}
			// Unrecognized identity: fall through and insert as new.
		}

		var id int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO content_items (section, content_type, content, order_index)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			section, it.Type, it.Content, it.OrderIndex).Scan(&id); err != nil {
			return nil, fmt.Errorf("insert item in %s: %w", section, err)
		}
		keep = append(keep, id)
	}

	if len(keep) == 0 {
		if _, err := tx.Exec(ctx,
			`DELETE FROM content_items WHERE section = $1`, section); err != nil {
			return nil, fmt.Errorf("clear section %s: %w", section, err)
		}
	} else {
		if _, err := tx.Exec(ctx,
			`DELETE FROM content_items WHERE section = $1 AND NOT (id = ANY($2))`,
			section, keep); err != nil {
			return nil, fmt.Errorf("prune section %s: %w", section, err)
		}
	}

	rows, err := tx.Query(ctx,
		`SELECT id, section, content_type, content, order_index, created_at, updated_at
		 FROM content_items
		 WHERE section = $1
		 ORDER BY order_index ASC, id ASC`, section)
	if err != nil {
		return nil, fmt.Errorf("reread section %s: %w", section, err)
	}
	items, err := collectItems(rows)
	if err != nil {
		return nil, fmt.Errorf("reread section %s: %w", section, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reconcile for %s: %w", section, err)
	}
	return items, nil
}

// scannable abstracts pgx.Row and pgx.Rows for the scan helpers.
type scannable interface {
	Scan(dest ...any) error
}

func scanItem(row scannable) (content.Item, error) {
	var it content.Item
	err := row.Scan(&it.ID, &it.Section, &it.Type, &it.Content, &it.OrderIndex, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return content.Item{}, fmt.Errorf("scan content item: %w", err)
	}
	it.Normalize()
	return it, nil
}

func collectItems(rows pgx.Rows) ([]content.Item, error) {
	defer rows.Close()

	var items []content.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
