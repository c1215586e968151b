package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/atelier-cms/atelier/internal/adapter/otel"
	"github.com/atelier-cms/atelier/internal/domain"
	"github.com/atelier-cms/atelier/internal/domain/content"
)

// mockStore reconciles against an in-memory item list the way the postgres
// store does: IDs survive updates, inserts get fresh IDs, absent IDs are
// deleted, and the canonical list is returned ordered.
type mockStore struct {
	items  []content.Item
	nextID int64
	err    error
	calls  int
}

func (m *mockStore) ListContent(_ context.Context, section string) ([]content.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []content.Item
	for _, it := range m.items {
		if it.Section == section {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockStore) ReconcileSection(_ context.Context, section string, desired []content.Item) ([]content.Item, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	known := make(map[int64]bool, len(m.items))
	for _, it := range m.items {
		if it.Section == section {
			known[it.ID] = true
		}
	}

	var next []content.Item
	for _, it := range m.items {
		if it.Section != section {
			next = append(next, it)
		}
	}
	for _, it := range desired {
		if it.ID == 0 || !known[it.ID] {
			m.nextID++
			it.ID = m.nextID
		}
		it.Section = section
		next = append(next, it)
	}
	m.items = next
	return m.ListContent(context.Background(), section)
}

// mockCache records invalidations; Get always misses so tests exercise the store.
type mockCache struct {
	deleted []string
	store   map[string][]byte
}

func (c *mockCache) Get(key string) ([]byte, bool) {
	v, ok := c.store[key]
	return v, ok
}

func (c *mockCache) Set(key string, value []byte) {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = value
}

func (c *mockCache) Delete(key string) {
	c.deleted = append(c.deleted, key)
	delete(c.store, key)
}

func (c *mockCache) Close() {}

func newTestService(t *testing.T, store *mockStore, cache *mockCache) *ContentService {
	t.Helper()
	metrics, err := otel.NewMetrics()
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sections := content.NewSections([]string{"fragmenti", "about"})
	return NewContentService(sections, store, cache, metrics, log)
}

func TestReconcileRejectsUnknownSection(t *testing.T) {
	svc := newTestService(t, &mockStore{}, &mockCache{})
	_, err := svc.Reconcile(context.Background(), "nope", nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestReconcileRejectsUnknownContentType(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, store, &mockCache{})
	_, err := svc.Reconcile(context.Background(), "fragmenti", []content.Item{
		{Type: "video", Content: "x"},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if store.calls != 0 {
		t.Error("validation failures must not reach the store")
	}
}

func TestReconcileDropsEmptyItems(t *testing.T) {
	svc := newTestService(t, &mockStore{}, &mockCache{})
	got, err := svc.Reconcile(context.Background(), "fragmenti", []content.Item{
		{Type: content.TypeText, Content: "<p><br></p>"},
		{Type: content.TypeText, Content: "<p>Kept</p>"},
		{Type: content.TypeImage, Content: `{"src":"data:image/png;base64,AAAA","alt":""}`},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(got) != 1 || got[0].Content != "<p>Kept</p>" {
		t.Fatalf("expected only the non-empty item, got %+v", got)
	}
	if got[0].OrderIndex != 0 {
		t.Errorf("expected dense order starting at 0, got %d", got[0].OrderIndex)
	}
}

func TestReconcileAssignsDenseOrder(t *testing.T) {
	svc := newTestService(t, &mockStore{}, &mockCache{})
	// Submitted order indexes are ignored; array position wins.
	got, err := svc.Reconcile(context.Background(), "fragmenti", []content.Item{
		{Type: content.TypeText, Content: "a", OrderIndex: 7},
		{Type: content.TypeText, Content: "b", OrderIndex: 3},
		{Type: content.TypeText, Content: "c", OrderIndex: 3},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	for i, it := range got {
		if it.OrderIndex != i {
			t.Errorf("item %d has order %d, want %d", i, it.OrderIndex, i)
		}
	}
	if got[0].Content != "a" || got[1].Content != "b" || got[2].Content != "c" {
		t.Errorf("array order not preserved: %+v", got)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, store, &mockCache{})
	ctx := context.Background()

	first, err := svc.Reconcile(ctx, "fragmenti", []content.Item{
		{Type: content.TypeText, Content: "a"},
		{Type: content.TypeText, Content: "b"},
	})
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}

	// Submitting the canonical result back must converge to the same state.
	second, err := svc.Reconcile(ctx, "fragmenti", first)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("expected %d items, got %d", len(first), len(second))
	}
	for i := range first {
		if second[i].ID != first[i].ID || second[i].Content != first[i].Content {
			t.Errorf("item %d diverged: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestReconcileMixedUpdateDeleteInsert(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, store, &mockCache{})
	ctx := context.Background()

	seeded, err := svc.Reconcile(ctx, "fragmenti", []content.Item{
		{Type: content.TypeText, Content: "one"},
		{Type: content.TypeText, Content: "two"},
		{Type: content.TypeText, Content: "three"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := svc.Reconcile(ctx, "fragmenti", []content.Item{
		{ID: seeded[2].ID, Type: content.TypeText, Content: "three moved up"},
		{Type: content.TypeText, Content: "brand new"},
		{ID: seeded[0].ID, Type: content.TypeText, Content: "one"},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	if got[0].ID != seeded[2].ID || got[0].Content != "three moved up" {
		t.Errorf("unexpected first item: %+v", got[0])
	}
	if got[2].ID != seeded[0].ID {
		t.Errorf("expected surviving item last, got %+v", got[2])
	}
	for _, it := range got {
		if it.ID == seeded[1].ID {
			t.Error("item absent from submission must be deleted")
		}
	}
}

func TestReconcileEmptyListClearsSection(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, store, &mockCache{})
	ctx := context.Background()

	if _, err := svc.Reconcile(ctx, "fragmenti", []content.Item{
		{Type: content.TypeText, Content: "going away"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := svc.Reconcile(ctx, "fragmenti", nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty section, got %+v", got)
	}
}

func TestReconcileNormalizesLegacyImages(t *testing.T) {
	svc := newTestService(t, &mockStore{}, &mockCache{})
	got, err := svc.Reconcile(context.Background(), "fragmenti", []content.Item{
		{Type: content.TypeImage, Content: "/media/old.jpg"},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(got) != 1 || got[0].Content != `{"src":"/media/old.jpg","alt":""}` {
		t.Errorf("expected canonical image payload, got %+v", got)
	}
}

func TestReconcileInvalidatesCache(t *testing.T) {
	cache := &mockCache{}
	svc := newTestService(t, &mockStore{}, cache)
	if _, err := svc.Reconcile(context.Background(), "fragmenti", nil); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(cache.deleted) != 1 || cache.deleted[0] != "section:fragmenti" {
		t.Errorf("expected cache invalidation for the section, got %v", cache.deleted)
	}
}

func TestReconcileStoreFailureKeepsCache(t *testing.T) {
	cache := &mockCache{}
	store := &mockStore{err: errors.New("pg down")}
	svc := newTestService(t, store, cache)
	if _, err := svc.Reconcile(context.Background(), "fragmenti", nil); err == nil {
		t.Fatal("expected store error")
	}
	if len(cache.deleted) != 0 {
		t.Error("failed reconcile must not touch the cache")
	}
}

func TestListServesFromCache(t *testing.T) {
	store := &mockStore{}
	cache := &mockCache{}
	svc := newTestService(t, store, cache)
	ctx := context.Background()

	if _, err := svc.Reconcile(ctx, "about", []content.Item{
		{Type: content.TypeText, Content: "bio"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// First list populates the cache.
	first, err := svc.List(ctx, "about")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 item, got %d", len(first))
	}

	// Second list must not hit the store.
	store.err = errors.New("pg down")
	second, err := svc.List(ctx, "about")
	if err != nil {
		t.Fatalf("cached list: %v", err)
	}
	if len(second) != 1 || second[0].Content != "bio" {
		t.Errorf("unexpected cached result: %+v", second)
	}
}

func TestListRejectsUnknownSection(t *testing.T) {
	svc := newTestService(t, &mockStore{}, &mockCache{})
	_, err := svc.List(context.Background(), "nope")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
