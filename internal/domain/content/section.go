package content

import (
	"fmt"

	"github.com/atelier-cms/atelier/internal/domain"
)

// Sections is the fixed set of editable section keys. Sections are created
// by configuration, never by the editor.
type Sections struct {
	keys  []string
	index map[string]bool
}

// NewSections builds the section registry from the configured key list.
func NewSections(keys []string) *Sections {
	s := &Sections{
		keys:  append([]string(nil), keys...),
		index: make(map[string]bool, len(keys)),
	}
	for _, k := range keys {
		s.index[k] = true
	}
	return s
}

// Keys returns the configured section keys in configuration order.
func (s *Sections) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Contains reports whether key is a recognized section.
func (s *Sections) Contains(key string) bool {
	return s.index[key]
}

// Require returns ErrValidation when key is not a recognized section.
func (s *Sections) Require(key string) error {
	if !s.index[key] {
		return fmt.Errorf("%w: unknown section %q", domain.ErrValidation, key)
	}
	return nil
}
