package core

import (
	"log/slog"
	"sync"
)

// MapRenderer draws the filtered view as map markers.
// RenderMarkers must replace every previously drawn marker.
type MapRenderer interface {
	RenderMarkers(v View)
	Resize()
}

// TableRenderer draws the filtered view as table rows, in view order.
type TableRenderer interface {
	RenderTable(v View)
}

// StatsRenderer shows dataset and view totals.
type StatsRenderer interface {
	RenderStats(v View)
}

// Renderers groups the projections a controller drives. Nil members are skipped.
type Renderers struct {
	Map   MapRenderer
	Table TableRenderer
	Stats StatsRenderer
}

// Controller owns one dashboard's state and keeps its renderers in sync.
//
// Dispatch runs each action to completion, transition then render, before
// the next one starts, so renderers never observe a half-applied state.
type Controller struct {
	engine    *Engine
	renderers Renderers
	logger    *slog.Logger

	mu    sync.Mutex
	state State
}

// NewController creates a controller in the engine's initial state and
// performs the startup render of markers and statistics.
func NewController(engine *Engine, renderers Renderers, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		engine:    engine,
		renderers: renderers,
		logger:    logger,
		state:     engine.Initial(),
	}
	c.render(c.state, Effects{Markers: true, Stats: true})
	return c
}

// Dispatch applies a and re-renders what the transition requires.
// On error the state and renderings are left untouched.
func (c *Controller) Dispatch(a Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, fx, err := c.engine.Reduce(c.state, a)
	if err != nil {
		c.logger.Debug("action rejected", "action", ActionName(a), "error", err)
		return err
	}
	c.state = next
	c.render(next, fx)

	c.logger.Debug("action applied",
		"action", ActionName(a),
		"visible", next.View.Len(),
		"mode", next.Mode,
	)
	return nil
}

// State returns the current state. The returned value shares no mutable data
// with the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View returns the current filtered view.
func (c *Controller) View() View {
	return c.State().View
}

// Store returns the record store behind this controller.
func (c *Controller) Store() *RecordStore {
	return c.engine.Store()
}

// render runs the requested steps. Callers hold c.mu.
func (c *Controller) render(s State, fx Effects) {
	r := c.renderers
	if fx.ResizeMap && r.Map != nil {
		r.Map.Resize()
	}
	if fx.Markers && r.Map != nil {
		r.Map.RenderMarkers(s.View)
	}
	if fx.Table && r.Table != nil {
		r.Table.RenderTable(s.View)
	}
	if fx.Stats && r.Stats != nil {
		r.Stats.RenderStats(s.View)
	}
}
