// Package layout defines the persisted data model of a gridboard dashboard.
//
// A dashboard is an ordered list of [Widget] records placed on a grid that is
// a fixed number of columns wide and grows downward without bound. The list
// order is insertion order; spatial order is derived with [SortVisual].
//
// # Core Types
//
//   - [Widget]: a placed rectangular block with an opaque settings bag
//   - [Position]: zero-based grid cell of a widget's top-left corner
//   - [Footprint]: a widget's size in grid cells, always resolved from its size id
//   - [Rect]: a positioned footprint with overlap and cell enumeration helpers
//   - [Meta]: companion record that gates grid-width migration
//
// # Serialization
//
// The persisted record is
//
//	[{"id": "...", "type": "clock", "size": "2x1",
//	  "position": {"col": 0, "row": 0}, "settings": {}, "createdAt": "..."}]
//
// with a metadata record {"gridVersion": 2, "gridCols": 4, "migratedAt": "..."}.
// Three codecs encode the same records: [JSON] (default), [CBOR] (compact
// snapshots) and [YAML] (human import/export). Use [CodecByName] to select one
// from configuration.
//
// # Snapshots
//
// [Clone] produces a structural copy suitable for undo history. Settings maps
// are shared between the copy and the original: the layout engine never
// mutates a settings map in place, it only replaces it.
package layout
