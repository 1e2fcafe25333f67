// Package registry resolves widget types and size identifiers to footprints
// and default settings.
//
// The layout engine treats the registry as the single source of footprint
// truth: a widget stores a size id, never a {cols, rows} pair, and every
// geometric operation re-resolves that id through [Registry.Size]. Legacy
// aliases ("small", "medium", ...) are mapped to canonical ids by
// [Registry.NormalizeSizeID] so layouts written by older versions keep their
// shape.
//
// [Catalog] is the built-in implementation used by the gridboard binary. Hosts
// with their own widget catalog implement [Registry] directly.
package registry

import (
	"github.com/matzehuels/gridboard/pkg/layout"
)

// TypeInfo describes a widget type.
type TypeInfo struct {
	ID              string
	Title           string
	DefaultSize     string
	Sizes           []string
	DefaultSettings map[string]any
}

// Supports reports whether sizeID (canonical) is in t.Sizes.
func (t TypeInfo) Supports(sizeID string) bool {
	for _, s := range t.Sizes {
		if s == sizeID {
			return true
		}
	}
	return false
}

// Registry maps widget types and sizes to footprints and defaults.
type Registry interface {
	// Size resolves a (possibly legacy) size id to a footprint.
	Size(sizeID string) (layout.Footprint, bool)

	// Type returns the description of a widget type.
	Type(typeID string) (TypeInfo, bool)

	// NormalizeSizeID maps legacy aliases to canonical ids. Unknown ids are
	// returned unchanged.
	NormalizeSizeID(sizeID string) string

	// SupportsSize reports whether the type may be shown at the given size.
	SupportsSize(typeID, sizeID string) bool

	// SupportedSizes lists the canonical sizes a type supports, smallest first.
	SupportedSizes(typeID string) []string

	// CreateWidget builds a new widget of the given type. Non-zero fields of
	// overrides take precedence over the type's defaults.
	CreateWidget(typeID string, overrides layout.Widget) (layout.Widget, error)
}
