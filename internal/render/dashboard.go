package render

import (
	"github.com/JonMunkholm/agrimap/internal/core"
	"golang.org/x/text/language"
)

// Dashboard bundles the three projections of one dashboard session.
type Dashboard struct {
	Map   *MarkerLayer
	Table *TableView
	Stats *StatsPanel
}

// NewDashboard returns empty projections sharing palette.
func NewDashboard(palette *Palette, tag language.Tag) *Dashboard {
	return &Dashboard{
		Map:   NewMarkerLayer(palette),
		Table: NewTableView(),
		Stats: NewStatsPanel(tag),
	}
}

// Renderers wires the projections into a controller.
func (d *Dashboard) Renderers() core.Renderers {
	return core.Renderers{Map: d.Map, Table: d.Table, Stats: d.Stats}
}
