// Package content holds the domain model for section content: ordered
// text and image items, the wire payload shape, and the empty-content rule
// shared by the editor and the reconciliation service.
package content

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/atelier-cms/atelier/internal/domain"
)

// Type tags the payload variant of an item.
type Type string

const (
	TypeText  Type = "text"
	TypeImage Type = "image"
)

// Valid reports whether t is a known content type.
func (t Type) Valid() bool {
	return t == TypeText || t == TypeImage
}

// Item is one persisted block of content within a section.
// ID is zero for items that have not been persisted yet.
type Item struct {
	ID         int64     `json:"id,omitempty"`
	Section    string    `json:"-"`
	Type       Type      `json:"content_type"`
	Content    string    `json:"content"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// Image is the structured payload of an image item.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// EncodeImage returns the canonical JSON content string for an image payload.
func EncodeImage(img Image) string {
	data, _ := json.Marshal(img)
	return string(data)
}

// DecodeImage parses an image item's content string. Content written by
// older site versions is a bare storage path with no alt text; such values
// are normalized to the structured form.
func DecodeImage(content string) Image {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") {
		var img Image
		if err := json.Unmarshal([]byte(trimmed), &img); err == nil {
			return img
		}
	}
	return Image{Src: trimmed}
}

// Normalize rewrites legacy payload encodings into their canonical form.
// It is applied once at the storage read boundary so the rest of the system
// only ever sees structured image content.
func (it *Item) Normalize() {
	if it.Type == TypeImage {
		it.Content = EncodeImage(DecodeImage(it.Content))
	}
}

// Validate checks the item's structural shape. Empty content is not a
// validation error; empty items are filtered, not rejected.
func (it *Item) Validate() error {
	if !it.Type.Valid() {
		return fmt.Errorf("%w: unknown content type %q", domain.ErrValidation, it.Type)
	}
	return nil
}
