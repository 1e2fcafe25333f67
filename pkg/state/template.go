package state

import (
	"maps"

	"github.com/matzehuels/gridboard/pkg/layout"
)

// TemplateWidget is one entry of a layout template.
type TemplateWidget struct {
	Type     string
	Size     string
	Settings map[string]any
}

// DefaultTemplate is the layout installed on first run.
func DefaultTemplate() []TemplateWidget {
	return []TemplateWidget{
		{Type: "clock", Size: "1x1"},
		{Type: "weather", Size: "2x1"},
		{Type: "stats", Size: "1x1"},
		{Type: "chart", Size: "2x2"},
		{Type: "notes", Size: "2x2"},
	}
}

// buildTemplate instantiates the configured template in order, each entry at
// the first free slot. Entries the registry rejects are skipped.
// Must be called with mu held.
func (m *Manager) buildTemplate() []layout.Widget {
	widgets := make([]layout.Widget, 0, len(m.template))
	now := m.clock.Now().UTC()
	for _, t := range m.template {
		w, err := m.reg.CreateWidget(t.Type, layout.Widget{
			Size:      t.Size,
			Settings:  maps.Clone(t.Settings),
			CreatedAt: now,
		})
		if err != nil {
			m.logger.Warn("skipping template widget", "type", t.Type, "err", err)
			continue
		}
		f := m.engine.Footprint(w)
		w.Position = m.engine.FindFreePosition(widgets, f.Cols, f.Rows)
		widgets = append(widgets, w)
	}
	return widgets
}
