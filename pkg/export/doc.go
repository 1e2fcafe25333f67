// Package export converts layouts to and from interchange formats.
//
// The data formats (json, yaml, cbor) encode the persisted widget record
// array and round-trip through [Import]. The visual formats render a grid
// preview: dot emits a Graphviz graph holding one HTML table whose cells span
// the widgets' footprints, and svg renders that graph with Graphviz.
package export
