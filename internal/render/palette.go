// Package render projects a filtered view into what the dashboard shows:
// map markers, table rows and summary statistics.
//
// Each projection implements one of the renderer interfaces in core and keeps
// the result of its last render. Every render replaces the previous result.
package render

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// FallbackColor is used for categories missing from the palette.
const FallbackColor = "#666666"

// PaletteEntry maps one category to its marker color.
type PaletteEntry struct {
	Category string `yaml:"category" json:"category"`
	Color    string `yaml:"color" json:"color"`
}

// DefaultPalette lists the built-in category colors in legend order.
var DefaultPalette = []PaletteEntry{
	{"Fruit & Vegetable Processing", "#dc2626"},
	{"Commercial Bakeries", "#2563eb"},
	{"Retail Bakeries", "#16a34a"},
	{"Breweries", "#ea580c"},
	{"Fruit & Vegetable Wholesalers", "#9333ea"},
}

// Palette is an ordered, open category-to-color map.
type Palette struct {
	entries  []PaletteEntry
	index    map[string]int
	fallback string
}

// NewPalette builds a palette from entries. Later entries for the same
// category replace the earlier color but keep its legend position.
func NewPalette(entries []PaletteEntry, fallback string) *Palette {
	if fallback == "" {
		fallback = FallbackColor
	}
	p := &Palette{index: make(map[string]int), fallback: fallback}
	for _, e := range entries {
		p.set(e)
	}
	return p
}

func (p *Palette) set(e PaletteEntry) {
	if i, ok := p.index[e.Category]; ok {
		p.entries[i].Color = e.Color
		return
	}
	p.index[e.Category] = len(p.entries)
	p.entries = append(p.entries, e)
}

// Color returns the color for category, or the fallback.
func (p *Palette) Color(category string) string {
	if i, ok := p.index[category]; ok {
		return p.entries[i].Color
	}
	return p.fallback
}

// Fallback returns the color used for unknown categories.
func (p *Palette) Fallback() string { return p.fallback }

// Legend returns the palette entries in declaration order.
func (p *Palette) Legend() []PaletteEntry {
	return append([]PaletteEntry(nil), p.entries...)
}

// paletteFile is the YAML layout accepted by LoadPalette:
//
//	fallback: "#666666"
//	categories:
//	  - category: Breweries
//	    color: "#ea580c"
type paletteFile struct {
	Fallback   string         `yaml:"fallback"`
	Categories []PaletteEntry `yaml:"categories"`
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// LoadPalette reads a YAML palette file and layers it over DefaultPalette.
// An empty path returns the defaults.
func LoadPalette(path string) (*Palette, error) {
	if path == "" {
		return NewPalette(DefaultPalette, FallbackColor), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read palette: %w", err)
	}
	return ParsePalette(data)
}

// ParsePalette decodes YAML palette data and layers it over DefaultPalette.
func ParsePalette(data []byte) (*Palette, error) {
	var f paletteFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse palette: %w", err)
	}

	if f.Fallback != "" && !hexColor.MatchString(f.Fallback) {
		return nil, fmt.Errorf("palette fallback %q is not a hex color", f.Fallback)
	}
	entries := append([]PaletteEntry(nil), DefaultPalette...)
	for _, e := range f.Categories {
		if e.Category == "" {
			return nil, fmt.Errorf("palette entry with color %q has no category", e.Color)
		}
		if !hexColor.MatchString(e.Color) {
			return nil, fmt.Errorf("palette color %q for %q is not a hex color", e.Color, e.Category)
		}
		entries = append(entries, e)
	}
	return NewPalette(entries, f.Fallback), nil
}
