package core

import (
	"fmt"
	"strings"
)

// ViewMode selects which rendering is visible.
type ViewMode string

const (
	ViewMap   ViewMode = "map"
	ViewTable ViewMode = "table"
)

// ParseViewMode accepts "map" or "table", case-insensitively.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(s))) {
	case ViewMap:
		return ViewMap, nil
	case ViewTable:
		return ViewTable, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidViewMode, s)
	}
}

// State is the complete view state of one dashboard.
// The filtered view always equals Filter applied to the store, reordered by
// the last sort since the filter last changed.
type State struct {
	Filter    Filter
	View      View
	Mode      ViewMode
	SortField string // Last sort column, empty when the view is in dataset order
}

// Action is a user intent handled by Engine.Reduce.
type Action interface {
	actionName() string
}

// ToggleCategory flips one category in the active set.
type ToggleCategory struct{ Category string }

// SetSearch replaces the search term.
type SetSearch struct{ Term string }

// SortBy reorders the filtered view by a column.
type SortBy struct{ Field string }

// SwitchView selects the visible rendering.
type SwitchView struct{ Mode ViewMode }

func (ToggleCategory) actionName() string { return "toggle_category" }
func (SetSearch) actionName() string      { return "set_search" }
func (SortBy) actionName() string         { return "sort_by" }
func (SwitchView) actionName() string     { return "switch_view" }

// ActionName returns a stable name for logging.
func ActionName(a Action) string {
	if a == nil {
		return ""
	}
	return a.actionName()
}

// Effects lists the render steps a transition requires.
type Effects struct {
	Markers   bool // redraw map markers
	ResizeMap bool // map container became visible
	Table     bool // rebuild table rows
	Stats     bool // recompute statistics
}

// Any reports whether at least one render step is needed.
func (e Effects) Any() bool {
	return e.Markers || e.ResizeMap || e.Table || e.Stats
}

// Engine computes state transitions over one record store.
type Engine struct {
	store  *RecordStore
	sorter *Sorter
}

// NewEngine binds a store and a sorter.
func NewEngine(store *RecordStore, sorter *Sorter) *Engine {
	return &Engine{store: store, sorter: sorter}
}

// Store returns the engine's record store.
func (e *Engine) Store() *RecordStore { return e.store }

// Initial returns the startup state: every category enabled, no search,
// dataset order, map view.
func (e *Engine) Initial() State {
	f := NewFilter(e.store.Categories())
	return State{
		Filter: f,
		View:   f.Apply(e.store),
		Mode:   ViewMap,
	}
}

// Reduce returns the state after applying a, and the render steps it needs.
// The input state is never modified. On error the input state is returned.
func (e *Engine) Reduce(s State, a Action) (State, Effects, error) {
	switch act := a.(type) {
	case ToggleCategory:
		return e.refilter(s, s.Filter.ToggleCategory(act.Category)), e.filterEffects(s), nil

	case SetSearch:
		return e.refilter(s, s.Filter.WithSearch(act.Term)), e.filterEffects(s), nil

	case SortBy:
		v, err := e.sorter.Sort(s.View, act.Field)
		if err != nil {
			return s, Effects{}, err
		}
		next := s
		next.View = v
		next.SortField = act.Field
		return next, Effects{Table: true}, nil

	case SwitchView:
		if act.Mode != ViewMap && act.Mode != ViewTable {
			return s, Effects{}, fmt.Errorf("%w: %q", ErrInvalidViewMode, act.Mode)
		}
		next := s
		next.Mode = act.Mode
		if act.Mode == ViewMap {
			return next, Effects{Markers: true, ResizeMap: true}, nil
		}
		return next, Effects{Table: true}, nil

	default:
		return s, Effects{}, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}
}

// refilter recomputes the view from the store; the result is in dataset order.
func (e *Engine) refilter(s State, f Filter) State {
	return State{
		Filter: f,
		View:   f.Apply(e.store),
		Mode:   s.Mode,
	}
}

// filterEffects: markers and statistics always follow the filter; the table
// only while it is the visible view.
func (e *Engine) filterEffects(s State) Effects {
	return Effects{Markers: true, Stats: true, Table: s.Mode == ViewTable}
}
