package render

import (
	"sync"

	"github.com/JonMunkholm/agrimap/internal/core"
)

// Marker styling.
const (
	RadiusHighWaste = 12
	RadiusDefault   = 8
	StrokeColor     = "#fff"
	StrokeWeight    = 2
	StrokeOpacity   = 1.0
	FillOpacity     = 0.8
)

// MapView is the initial map position, tile layer and marker clustering.
type MapView struct {
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Zoom          int     `json:"zoom"`
	TileURL       string  `json:"tileUrl"`
	Attribution   string  `json:"attribution"`
	ClusterRadius int     `json:"clusterRadius"` // pixels; Leaflet.markercluster maxClusterRadius
}

// DefaultMapView centers on Montreal.
var DefaultMapView = MapView{
	Lat:           45.5017,
	Lng:           -73.5673,
	Zoom:          11,
	TileURL:       "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
	Attribution:   "© OpenStreetMap contributors",
	ClusterRadius: 50,
}

// Popup is the detail card shown when a marker is clicked.
type Popup struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Address     string `json:"address"`
	Borough     string `json:"borough"`
	Employees   string `json:"employees"`
	WasteLevel  string `json:"wasteLevel"`
	BadgeClass  string `json:"badgeClass"`
	AnnualWaste string `json:"annualWaste"`
	PeakSeason  string `json:"peakSeason"`
}

// Marker is one circle on the map.
type Marker struct {
	ID          string  `json:"id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Radius      int     `json:"radius"`
	FillColor   string  `json:"fillColor"`
	Color       string  `json:"color"`
	Weight      int     `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fillOpacity"`
	Popup       Popup   `json:"popup"`
}

// NewMarker styles r. ok is false when r has no usable coordinates.
func NewMarker(r core.BusinessRecord, palette *Palette) (m Marker, ok bool) {
	if !r.HasCoordinates() {
		return Marker{}, false
	}
	radius := RadiusDefault
	if r.IsHighWaste() {
		radius = RadiusHighWaste
	}
	return Marker{
		ID:          core.FormatNumber(r.ID),
		Lat:         r.Latitude.Float64,
		Lng:         r.Longitude.Float64,
		Radius:      radius,
		FillColor:   palette.Color(r.CategoryKey()),
		Color:       StrokeColor,
		Weight:      StrokeWeight,
		Opacity:     StrokeOpacity,
		FillOpacity: FillOpacity,
		Popup: Popup{
			Name:        core.FormatText(r.Name),
			Category:    core.FormatText(r.Category),
			Address:     core.FormatText(r.Address),
			Borough:     core.FormatText(r.Borough),
			Employees:   core.FormatNumber(r.Employees),
			WasteLevel:  core.FormatText(r.WasteLevel),
			BadgeClass:  BadgeClass(r.WasteLevel.String),
			AnnualWaste: core.FormatNumber(r.AnnualWasteTonnes),
			PeakSeason:  core.FormatText(r.PeakSeason),
		},
	}, true
}

// MarkerLayer holds the markers of the last render.
// It implements core.MapRenderer.
type MarkerLayer struct {
	palette *Palette

	mu      sync.RWMutex
	markers []Marker
	resizes int
}

// NewMarkerLayer returns an empty layer colored by palette.
func NewMarkerLayer(palette *Palette) *MarkerLayer {
	if palette == nil {
		palette = NewPalette(DefaultPalette, FallbackColor)
	}
	return &MarkerLayer{palette: palette}
}

// RenderMarkers replaces the layer with one marker per located record in v.
func (l *MarkerLayer) RenderMarkers(v core.View) {
	markers := make([]Marker, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		if m, ok := NewMarker(v.At(i), l.palette); ok {
			markers = append(markers, m)
		}
	}

	l.mu.Lock()
	l.markers = markers
	l.mu.Unlock()
}

// Resize records that the map container became visible again.
func (l *MarkerLayer) Resize() {
	l.mu.Lock()
	l.resizes++
	l.mu.Unlock()
}

// Markers returns a copy of the current markers.
func (l *MarkerLayer) Markers() []Marker {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Marker(nil), l.markers...)
}

// Resizes returns how many times the container was resized.
func (l *MarkerLayer) Resizes() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.resizes
}

// Palette returns the layer's palette.
func (l *MarkerLayer) Palette() *Palette { return l.palette }
