package export

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// Format names an export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
	FormatDOT  Format = "dot"
	FormatSVG  Format = "svg"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatYAML, FormatCBOR, FormatDOT, FormatSVG}

// ParseFormat resolves a format name. "yml" is accepted for yaml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	case "dot", "gv":
		return FormatDOT, nil
	case "svg":
		return FormatSVG, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported format %q", s)
}

// FormatFromPath infers a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "cannot infer format of %q", path)
	}
	return ParseFormat(ext)
}

// IsData reports whether f encodes the widget records and can be imported.
func (f Format) IsData() bool {
	return f == FormatJSON || f == FormatYAML || f == FormatCBOR
}

func (f Format) codec() (layout.Codec, error) {
	if !f.IsData() {
		return nil, errors.New(errors.ErrCodeUnsupported, "format %q does not carry layout data", f)
	}
	return layout.CodecByName(string(f))
}

// Export encodes widgets in the given format. The engine is needed for the
// visual formats to resolve footprints.
func Export(ctx context.Context, f Format, widgets []layout.Widget, eng *grid.Engine, opts Options) ([]byte, error) {
	switch f {
	case FormatDOT:
		return []byte(ToDOT(widgets, eng, opts)), nil
	case FormatSVG:
		return RenderSVG(ctx, ToDOT(widgets, eng, opts))
	}

	c, err := f.codec()
	if err != nil {
		return nil, err
	}
	if widgets == nil {
		widgets = []layout.Widget{}
	}
	data, err := c.Marshal(layout.SortVisual(widgets))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s", f)
	}
	return data, nil
}

// Import decodes widgets from a data format.
func Import(f Format, data []byte) ([]layout.Widget, error) {
	c, err := f.codec()
	if err != nil {
		return nil, err
	}
	var widgets []layout.Widget
	if err := c.Unmarshal(data, &widgets); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", f)
	}
	return widgets, nil
}
