package registry

import (
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// =============================================================================
// Built-in Sizes
// =============================================================================

// Canonical size ids.
const (
	Size1x1 = "1x1"
	Size2x1 = "2x1"
	Size1x2 = "1x2"
	Size2x2 = "2x2"
	Size4x1 = "4x1"
	Size4x2 = "4x2"
	Size2x3 = "2x3"
)

var builtinSizes = map[string]layout.Footprint{
	Size1x1: {Cols: 1, Rows: 1},
	Size2x1: {Cols: 2, Rows: 1},
	Size1x2: {Cols: 1, Rows: 2},
	Size2x2: {Cols: 2, Rows: 2},
	Size4x1: {Cols: 4, Rows: 1},
	Size4x2: {Cols: 4, Rows: 2},
	Size2x3: {Cols: 2, Rows: 3},
}

// legacyAliases maps size ids written by the first layout format.
var legacyAliases = map[string]string{
	"small":  Size1x1,
	"medium": Size2x1,
	"tall":   Size1x2,
	"large":  Size2x2,
	"wide":   Size4x1,
	"hero":   Size4x2,
}

// =============================================================================
// Built-in Types
// =============================================================================

var builtinTypes = []TypeInfo{
	{
		ID:          "clock",
		Title:       "Clock",
		DefaultSize: Size1x1,
		Sizes:       []string{Size1x1, Size2x1},
		DefaultSettings: map[string]any{
			"format": "24h",
		},
	},
	{
		ID:          "notes",
		Title:       "Notes",
		DefaultSize: Size2x1,
		Sizes:       []string{Size1x1, Size2x1, Size2x2, Size2x3},
		DefaultSettings: map[string]any{
			"text": "",
		},
	},
	{
		ID:          "weather",
		Title:       "Weather",
		DefaultSize: Size2x1,
		Sizes:       []string{Size1x1, Size2x1, Size2x2, Size4x1},
		DefaultSettings: map[string]any{
			"units": "metric",
		},
	},
	{
		ID:          "stats",
		Title:       "Stats",
		DefaultSize: Size2x2,
		Sizes:       []string{Size1x1, Size1x2, Size2x1, Size2x2, Size4x2},
	},
	{
		ID:          "chart",
		Title:       "Chart",
		DefaultSize: Size2x2,
		Sizes:       []string{Size2x1, Size2x2, Size4x1, Size4x2, Size2x3},
		DefaultSettings: map[string]any{
			"kind": "line",
		},
	},
	{
		ID:          "calendar",
		Title:       "Calendar",
		DefaultSize: Size2x2,
		Sizes:       []string{Size2x1, Size2x2, Size4x2},
	},
}

// =============================================================================
// Catalog
// =============================================================================

// Catalog is an in-memory [Registry].
type Catalog struct {
	sizes   map[string]layout.Footprint
	aliases map[string]string
	types   map[string]TypeInfo
	now     func() time.Time
	newID   func() string
}

// CatalogOption customises a Catalog.
type CatalogOption func(*Catalog)

// WithType adds or replaces a widget type.
func WithType(t TypeInfo) CatalogOption {
	return func(c *Catalog) { c.types[t.ID] = t }
}

// WithSize adds or replaces a canonical size.
func WithSize(id string, f layout.Footprint) CatalogOption {
	return func(c *Catalog) { c.sizes[id] = f }
}

// WithAlias maps a legacy size id onto a canonical one.
func WithAlias(legacy, canonical string) CatalogOption {
	return func(c *Catalog) { c.aliases[legacy] = canonical }
}

// WithIDGenerator overrides widget id generation. Tests use it for stable ids.
func WithIDGenerator(fn func() string) CatalogOption {
	return func(c *Catalog) { c.newID = fn }
}

// WithNow overrides the creation timestamp source.
func WithNow(fn func() time.Time) CatalogOption {
	return func(c *Catalog) { c.now = fn }
}

// NewCatalog returns the built-in catalog with opts applied.
func NewCatalog(opts ...CatalogOption) *Catalog {
	c := &Catalog{
		sizes:   maps.Clone(builtinSizes),
		aliases: maps.Clone(legacyAliases),
		types:   make(map[string]TypeInfo, len(builtinTypes)),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, t := range builtinTypes {
		c.types[t.ID] = t
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Size implements [Registry].
func (c *Catalog) Size(sizeID string) (layout.Footprint, bool) {
	f, ok := c.sizes[c.NormalizeSizeID(sizeID)]
	return f, ok
}

// Type implements [Registry].
func (c *Catalog) Type(typeID string) (TypeInfo, bool) {
	t, ok := c.types[typeID]
	return t, ok
}

// Types lists all widget types sorted by id.
func (c *Catalog) Types() []TypeInfo {
	out := make([]TypeInfo, 0, len(c.types))
	for _, id := range slices.Sorted(maps.Keys(c.types)) {
		out = append(out, c.types[id])
	}
	return out
}

// NormalizeSizeID implements [Registry].
func (c *Catalog) NormalizeSizeID(sizeID string) string {
	if canonical, ok := c.aliases[sizeID]; ok {
		return canonical
	}
	return sizeID
}

// SupportsSize implements [Registry].
func (c *Catalog) SupportsSize(typeID, sizeID string) bool {
	t, ok := c.types[typeID]
	if !ok {
		return false
	}
	canonical := c.NormalizeSizeID(sizeID)
	if _, ok := c.sizes[canonical]; !ok {
		return false
	}
	return t.Supports(canonical)
}

// SupportedSizes implements [Registry]. Sizes are ordered by area, then
// width, so the first entry is the smallest footprint.
func (c *Catalog) SupportedSizes(typeID string) []string {
	t, ok := c.types[typeID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(t.Sizes))
	for _, s := range t.Sizes {
		if _, ok := c.sizes[s]; ok {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := c.sizes[out[i]], c.sizes[out[j]]
		if a.Area() != b.Area() {
			return a.Area() < b.Area()
		}
		return a.Cols < b.Cols
	})
	return out
}

// CreateWidget implements [Registry].
func (c *Catalog) CreateWidget(typeID string, overrides layout.Widget) (layout.Widget, error) {
	t, ok := c.types[typeID]
	if !ok {
		return layout.Widget{}, errors.New(errors.ErrCodeTypeNotFound, "unknown widget type %q", typeID)
	}

	w := overrides
	w.Type = typeID
	if w.ID == "" {
		w.ID = c.newID()
	}
	if w.Size == "" {
		w.Size = t.DefaultSize
	}
	w.Size = c.NormalizeSizeID(w.Size)
	if !t.Supports(w.Size) {
		return layout.Widget{}, errors.New(errors.ErrCodeUnsupportedSize, "widget type %q does not support size %q", typeID, w.Size)
	}
	if w.Settings == nil {
		w.Settings = maps.Clone(t.DefaultSettings)
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = c.now().UTC()
	}
	return w, nil
}

// Ensure Catalog implements Registry.
var _ Registry = (*Catalog)(nil)
