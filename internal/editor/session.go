// Package editor models an in-progress editing session over one section.
// A session holds an ordered working copy of the section's blocks; nothing
// touches storage until Save.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/atelier-cms/atelier/internal/domain"
	"github.com/atelier-cms/atelier/internal/domain/content"
)

// Saver persists a session's blocks. ContentService satisfies it.
type Saver interface {
	List(ctx context.Context, section string) ([]content.Item, error)
	Reconcile(ctx context.Context, section string, items []content.Item) ([]content.Item, error)
}

// Session is the working copy of one section's blocks. All methods are safe
// for concurrent use; the autosave loop shares the session with handlers.
type Session struct {
	section string
	saver   Saver
	log     *slog.Logger

	mu            sync.Mutex
	blocks        []content.Item
	dirty         bool
	pendingDelete int

	saves singleflight.Group
}

const noPendingDelete = -1

// NewSession creates an empty session for the given section.
func NewSession(section string, saver Saver, log *slog.Logger) *Session {
	return &Session{
		section:       section,
		saver:         saver,
		log:           log,
		pendingDelete: noPendingDelete,
	}
}

// Section returns the section key this session edits.
func (s *Session) Section() string {
	return s.section
}

// Load replaces the working copy with the stored state of the section.
func (s *Session) Load(ctx context.Context) error {
	items, err := s.saver.List(ctx, s.section)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.section, err)
	}

	s.mu.Lock()
	s.blocks = items
	s.dirty = false
	s.pendingDelete = noPendingDelete
	s.mu.Unlock()
	return nil
}

// Blocks returns a copy of the working blocks in display order.
func (s *Session) Blocks() []content.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]content.Item(nil), s.blocks...)
}

// Dirty reports whether the session has unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// AddText appends a new text block.
func (s *Session) AddText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = append(s.blocks, content.Item{
		Section: s.section,
		Type:    content.TypeText,
		Content: text,
	})
	s.dirty = true
}

// AddImage appends a new image block with the canonical payload shape.
func (s *Session) AddImage(src, alt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = append(s.blocks, content.Item{
		Section: s.section,
		Type:    content.TypeImage,
		Content: content.EncodeImage(content.Image{Src: src, Alt: alt}),
	})
	s.dirty = true
}

// SetText replaces the payload of the text block at index i.
func (s *Session) SetText(i int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.blocks) {
		return fmt.Errorf("%w: block index %d out of range", domain.ErrValidation, i)
	}
	if s.blocks[i].Type != content.TypeText {
		return fmt.Errorf("%w: block %d is not text", domain.ErrValidation, i)
	}
	s.blocks[i].Content = text
	s.dirty = true
	return nil
}

// SetImage replaces the payload of the image block at index i.
func (s *Session) SetImage(i int, src, alt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.blocks) {
		return fmt.Errorf("%w: block index %d out of range", domain.ErrValidation, i)
	}
	if s.blocks[i].Type != content.TypeImage {
		return fmt.Errorf("%w: block %d is not an image", domain.ErrValidation, i)
	}
	s.blocks[i].Content = content.EncodeImage(content.Image{Src: src, Alt: alt})
	s.dirty = true
	return nil
}

// MoveUp swaps the block at index i with its predecessor. Moving the first
// block is a no-op.
func (s *Session) MoveUp(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i <= 0 || i >= len(s.blocks) {
		return
	}
	s.blocks[i-1], s.blocks[i] = s.blocks[i], s.blocks[i-1]
	s.trackSwapLocked(i-1, i)
	s.dirty = true
}

// MoveDown swaps the block at index i with its successor. Moving the last
// block is a no-op.
func (s *Session) MoveDown(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.blocks)-1 {
		return
	}
	s.blocks[i], s.blocks[i+1] = s.blocks[i+1], s.blocks[i]
	s.trackSwapLocked(i, i+1)
	s.dirty = true
}

// trackSwapLocked keeps the pending-delete mark on the same block after the
// blocks at indexes a and b trade places.
func (s *Session) trackSwapLocked(a, b int) {
	switch s.pendingDelete {
	case a:
		s.pendingDelete = b
	case b:
		s.pendingDelete = a
	}
}

// RequestDelete marks the block at index i for deletion. A second request
// replaces the first; nothing is removed until ConfirmDelete. The mark
// follows the block if it is moved before confirmation.
func (s *Session) RequestDelete(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.blocks) {
		return fmt.Errorf("%w: block index %d out of range", domain.ErrValidation, i)
	}
	s.pendingDelete = i
	return nil
}

// PendingDelete returns the index awaiting confirmation, or -1.
func (s *Session) PendingDelete() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingDelete
}

// ConfirmDelete removes the block marked by RequestDelete.
func (s *Session) ConfirmDelete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.pendingDelete
	if i == noPendingDelete {
		return fmt.Errorf("%w: no delete pending", domain.ErrValidation)
	}
	s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
	s.pendingDelete = noPendingDelete
	s.dirty = true
	return nil
}

// CancelDelete clears a pending delete without removing anything.
func (s *Session) CancelDelete() {
	s.mu.Lock()
	s.pendingDelete = noPendingDelete
	s.mu.Unlock()
}

// CleanupEmpty removes blocks whose payload is empty.
func (s *Session) CleanupEmpty() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleanupLocked()
}

func (s *Session) cleanupLocked() int {
	kept := s.blocks[:0]
	for _, b := range s.blocks {
		if content.IsEmpty(b.Type, b.Content) {
			continue
		}
		kept = append(kept, b)
	}
	removed := len(s.blocks) - len(kept)
	if removed > 0 {
		s.blocks = kept
		s.pendingDelete = noPendingDelete
		s.dirty = true
	}
	return removed
}

// Serialize returns the blocks as a wire-ready list with dense order indexes.
func (s *Session) Serialize() []content.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serializeLocked()
}

func (s *Session) serializeLocked() []content.Item {
	out := make([]content.Item, len(s.blocks))
	for i, b := range s.blocks {
		b.OrderIndex = i
		out[i] = b
	}
	return out
}

// Save drops empty blocks, persists the session, and adopts the canonical
// stored result. Concurrent saves of the same session coalesce into one
// storage round trip. A failed save leaves the working copy and dirty flag
// untouched.
func (s *Session) Save(ctx context.Context) error {
	_, err, _ := s.saves.Do("save", func() (any, error) {
		s.mu.Lock()
		s.cleanupLocked()
		desired := s.serializeLocked()
		s.mu.Unlock()

		items, err := s.saver.Reconcile(ctx, s.section, desired)
		if err != nil {
			return nil, fmt.Errorf("save %s: %w", s.section, err)
		}

		s.mu.Lock()
		s.blocks = items
		s.dirty = false
		s.pendingDelete = noPendingDelete
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

// AutoSave persists the session whenever it is dirty, once per interval,
// until ctx is canceled. Save errors are logged and retried next tick.
func (s *Session) AutoSave(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.Dirty() {
				continue
			}
			if err := s.Save(ctx); err != nil {
				s.log.Warn("autosave failed", "section", s.section, "error", err)
			}
		}
	}
}
