// Package gallery keeps the selection state of a product's media carousel.
package gallery

import (
	"fmt"

	"storefront/internal/domain"
)

type Kind int

const (
	KindMedia Kind = iota
	KindLegacyImage
)

func (k Kind) String() string {
	switch k {
	case KindMedia:
		return "media"
	case KindLegacyImage:
		return "legacyImage"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Item is either an uploaded media record or the product's single legacy
// imageUrl. Media is only meaningful for KindMedia.
type Item struct {
	Kind  Kind
	Media domain.ProductMedia
	URL   string
}

func (i Item) MediaType() domain.MediaType {
	if i.Kind == KindMedia {
		return i.Media.MediaType
	}
	return domain.MediaImage
}

// AltText falls back to the product name.
func (i Item) AltText(productName string) string {
	if i.Kind == KindMedia && i.Media.AltText != "" {
		return i.Media.AltText
	}
	return productName
}

type Gallery struct {
	items []Item
	index int
}

// New builds the sequence: media records in the order given, or the
// legacy imageUrl when there are none.
func New(p domain.Product, media []domain.ProductMedia) *Gallery {
	items := make([]Item, 0, len(media)+1)
	for _, m := range media {
		items = append(items, Item{Kind: KindMedia, Media: m, URL: m.URL})
	}
	if len(media) == 0 && p.ImageURL != "" {
		items = append(items, Item{Kind: KindLegacyImage, URL: p.ImageURL})
	}
	return &Gallery{items: items}
}

func (g *Gallery) Len() int   { return len(g.items) }
func (g *Gallery) Index() int { return g.index }
func (g *Gallery) Items() []Item {
	out := make([]Item, len(g.items))
	copy(out, g.items)
	return out
}

func (g *Gallery) Current() (Item, bool) {
	if len(g.items) == 0 {
		return Item{}, false
	}
	return g.items[g.index], true
}

func (g *Gallery) Next() {
	if n := len(g.items); n > 0 {
		g.index = (g.index + 1) % n
	}
}

func (g *Gallery) Prev() {
	if n := len(g.items); n > 0 {
		g.index = (g.index - 1 + n) % n
	}
}

// Select is a thumbnail click.
func (g *Gallery) Select(i int) error {
	if i < 0 || i >= len(g.items) {
		return fmt.Errorf("gallery: index %d out of range [0,%d)", i, len(g.items))
	}
	g.index = i
	return nil
}

// Counter renders "current / total"; empty with fewer than two items.
func (g *Gallery) Counter() string {
	if len(g.items) < 2 {
		return ""
	}
	return fmt.Sprintf("%d / %d", g.index+1, len(g.items))
}
