// Package templates renders the dashboard page and its htmx partials as
// templ components. The *_templ.go files are generated from the .templ
// sources with `templ generate`.
package templates

import (
	"encoding/json"

	"github.com/JonMunkholm/agrimap/internal/core"
	"github.com/JonMunkholm/agrimap/internal/render"
)

// UncategorizedLabel is shown for records without a category.
const UncategorizedLabel = "Uncategorized"

// CategoryItem is one category checkbox.
type CategoryItem struct {
	Name   string // filter key, empty for records without a category
	Color  string
	Active bool
}

// Label returns the display name.
func (c CategoryItem) Label() string {
	if c.Name == "" {
		return UncategorizedLabel
	}
	return c.Name
}

// PageData is everything the full dashboard page shows.
type PageData struct {
	Title      string
	Source     string
	MapConfig  string // JSON of render.MapView
	Stats      render.Stats
	Categories []CategoryItem
	Search     string
	Mode       core.ViewMode
	SortField  string
	Rows       []render.TableRow
	Legend     []render.PaletteEntry
	Fallback   string
}

// UpdateData is the state an action response refreshes.
type UpdateData struct {
	Stats      render.Stats
	Categories []CategoryItem
	Mode       core.ViewMode
	SortField  string
	Rows       []render.TableRow
}

type viewOption struct {
	Mode  core.ViewMode
	Label string
}

var viewOptions = []viewOption{
	{core.ViewMap, "Map"},
	{core.ViewTable, "Table"},
}

// hxVals encodes one form value for an hx-vals attribute.
func hxVals(key, value string) (string, error) {
	b, err := json.Marshal(map[string]string{key: value})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func swatchStyle(color string) string {
	return "background:" + color
}
