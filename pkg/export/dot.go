package export

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"slices"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// Options configures the visual formats.
type Options struct {
	// Title is rendered above the grid when set.
	Title string

	// CellSize is the side of one grid cell in points. Defaults to 72.
	CellSize int

	// Detailed adds the size and position to each widget's label.
	Detailed bool
}

var palette = []string{
	"#8ecae6", "#ffb703", "#90be6d", "#f28482", "#cdb4db", "#f6bd60", "#84a59d", "#a3c4f3",
}

// typeColors assigns palette colors to widget types in sorted order, so the
// same set of types always gets the same colors.
func typeColors(widgets []layout.Widget) map[string]string {
	var types []string
	for _, w := range widgets {
		types = append(types, w.Type)
	}
	slices.Sort(types)
	types = slices.Compact(types)

	colors := make(map[string]string, len(types))
	for i, t := range types {
		colors[t] = palette[i%len(palette)]
	}
	return colors
}

// ToDOT converts a layout to Graphviz DOT. The grid is a single HTML-like
// table: each widget is a cell spanning its footprint and free cells are
// left blank. The result can be rendered with [RenderSVG].
func ToDOT(widgets []layout.Widget, eng *grid.Engine, opts Options) string {
	size := opts.CellSize
	if size <= 0 {
		size = 72
	}
	colors := typeColors(widgets)

	starts := make(map[layout.Position]layout.Widget, len(widgets))
	for _, w := range widgets {
		starts[w.Position] = w
	}
	occ := eng.OccupiedCells(widgets)
	rows := max(eng.Bottom(widgets), 1)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=plaintext, fontname=\"Helvetica\", fontsize=12];\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  labelloc=t;\n  label=%q;\n", opts.Title)
	}
	buf.WriteString("\n  grid [label=<\n")
	buf.WriteString("    <TABLE BORDER=\"0\" CELLBORDER=\"1\" CELLSPACING=\"4\" CELLPADDING=\"4\">\n")

	// The leading row-number cell keeps rows that are fully covered by
	// taller widgets from being empty, which Graphviz rejects.
	for row := range rows {
		fmt.Fprintf(&buf, `      <TR><TD BORDER="0" WIDTH="16"><FONT POINT-SIZE="8">%d</FONT></TD>`, row)
		for col := range eng.Cols {
			p := layout.Position{Col: col, Row: row}
			if w, ok := starts[p]; ok {
				f := eng.Footprint(w)
				fmt.Fprintf(&buf, `<TD COLSPAN="%d" ROWSPAN="%d" WIDTH="%d" HEIGHT="%d" BGCOLOR="%s">%s</TD>`,
					f.Cols, f.Rows, f.Cols*size, f.Rows*size, colors[w.Type], cellLabel(w, opts.Detailed))
				continue
			}
			if occ.Has(col, row) {
				continue
			}
			fmt.Fprintf(&buf, `<TD WIDTH="%d" HEIGHT="%d" COLOR="#dddddd"> </TD>`, size, size)
		}
		buf.WriteString("</TR>\n")
	}

	buf.WriteString("    </TABLE>\n  >];\n}\n")
	return buf.String()
}

func cellLabel(w layout.Widget, detailed bool) string {
	label := "<B>" + html.EscapeString(w.Type) + "</B>"
	if detailed {
		label += fmt.Sprintf(`<BR/><FONT POINT-SIZE="9">%s @ %s</FONT>`, html.EscapeString(w.Size), w.Position)
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element to a zero-origin viewBox with
// matching width and height, so the SVG scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
