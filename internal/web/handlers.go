package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/agrimap/internal/core"
	"github.com/JonMunkholm/agrimap/internal/export"
	"github.com/JonMunkholm/agrimap/internal/logging"
	"github.com/JonMunkholm/agrimap/internal/render"
	"github.com/JonMunkholm/agrimap/internal/web/templates"
)

// PageTitle heads the dashboard page.
const PageTitle = "Montreal Agrifood Business Dashboard"

// StateResponse is the JSON snapshot of a session.
type StateResponse struct {
	Stats      render.Stats   `json:"stats"`
	Categories []CategoryJSON `json:"categories"`
	Search     string         `json:"search"`
	Mode       core.ViewMode  `json:"mode"`
	SortField  string         `json:"sortField,omitempty"`
}

// CategoryJSON is one category and whether it is shown.
type CategoryJSON struct {
	Name   string `json:"name"`
	Color  string `json:"color"`
	Active bool   `json:"active"`
}

// MarkersResponse is the marker layer with the map setup it is drawn on.
type MarkersResponse struct {
	View    render.MapView        `json:"view"`
	Markers []render.Marker       `json:"markers"`
	Legend  []render.PaletteEntry `json:"legend"`
}

// TableResponse is the table as last rendered.
type TableResponse struct {
	Columns   []render.TableColumn `json:"columns"`
	Rows      []render.TableRow    `json:"rows"`
	SortField string               `json:"sortField,omitempty"`
}

// HealthResponse reports liveness and the loaded dataset.
type HealthResponse struct {
	Status   string `json:"status"`
	Records  int    `json:"records"`
	Source   string `json:"source"`
	Sessions int    `json:"sessions"`
}

// updateEvent is sent in the HX-Trigger header after every action so the
// page script can redraw the map.
const updateEvent = "dashboard:updated"

type updateDetail struct {
	Mode   core.ViewMode `json:"mode"`
	Resize bool          `json:"resize"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Records:  s.store.Len(),
		Source:   s.source,
		Sessions: s.sessions.Len(),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	st := sess.Controller.State()

	mapConfig, err := json.Marshal(render.DefaultMapView)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	page := templates.Page(templates.PageData{
		Title:      PageTitle,
		Source:     s.source,
		MapConfig:  string(mapConfig),
		Stats:      sess.Dashboard.Stats.Stats(),
		Categories: s.categoryItems(st.Filter),
		Search:     st.Filter.Search,
		Mode:       st.Mode,
		SortField:  st.SortField,
		Rows:       sess.Dashboard.Table.Rows(),
		Legend:     s.palette.Legend(),
		Fallback:   s.palette.Fallback(),
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "error", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, s.stateResponse(sess))
}

func (s *Server) handleToggleCategory(w http.ResponseWriter, r *http.Request) {
	category, err := formValue(r, "category")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, core.ToggleCategory{Category: category})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errMissingParameter, err), http.StatusBadRequest)
		return
	}
	// An absent or empty term clears the search.
	s.dispatch(w, r, core.SetSearch{Term: r.PostForm.Get("q")})
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	field, err := formValue(r, "field")
	if err == nil && field == "" {
		err = fmt.Errorf("%w: field", errMissingParameter)
	}
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, core.SortBy{Field: field})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	raw, err := formValue(r, "mode")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	mode, err := core.ParseViewMode(raw)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, core.SwitchView{Mode: mode})
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	markers := sess.Dashboard.Map.Markers()
	if markers == nil {
		markers = []render.Marker{}
	}
	writeJSON(w, http.StatusOK, MarkersResponse{
		View:    render.DefaultMapView,
		Markers: markers,
		Legend:  s.palette.Legend(),
	})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	rows := sess.Dashboard.Table.Rows()

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.TableBody(rows).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render table", "error", err)
		}
		return
	}

	if rows == nil {
		rows = []render.TableRow{}
	}
	writeJSON(w, http.StatusOK, TableResponse{
		Columns:   render.TableColumns,
		Rows:      rows,
		SortField: sess.Controller.State().SortField,
	})
}

// handleExport downloads the session's filtered view in its current order.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	view := sess.Controller.View()

	w.Header().Set("Content-Type", export.ContentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", export.ContentDisposition())
	w.Header().Set("Cache-Control", "no-store")
	if err := export.WriteCSV(w, view); err != nil {
		logging.FromContext(r.Context()).Error("export failed", "error", err)
		return
	}
	logging.FromContext(r.Context()).Info("export", "rows", view.Len())
}

// dispatch applies a to the session and answers with the refreshed state:
// the stats partial with out-of-band swaps for htmx, JSON otherwise.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, a core.Action) {
	sess := sessionFrom(r.Context())
	resizes := sess.Dashboard.Map.Resizes()

	if err := sess.Controller.Dispatch(a); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	st := sess.Controller.State()
	logging.FromContext(r.Context()).Debug("dashboard action",
		"action", core.ActionName(a),
		"visible", st.View.Len(),
		"mode", st.Mode,
	)

	if !isHTMX(r) {
		writeJSON(w, http.StatusOK, s.stateResponse(sess))
		return
	}

	trigger, err := json.Marshal(map[string]updateDetail{
		updateEvent: {Mode: st.Mode, Resize: sess.Dashboard.Map.Resizes() != resizes},
	})
	if err == nil {
		w.Header().Set("HX-Trigger", string(trigger))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	update := templates.Update(templates.UpdateData{
		Stats:      sess.Dashboard.Stats.Stats(),
		Categories: s.categoryItems(st.Filter),
		Mode:       st.Mode,
		SortField:  st.SortField,
		Rows:       sess.Dashboard.Table.Rows(),
	})
	if err := update.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render update", "error", err)
	}
}

func (s *Server) stateResponse(sess *Session) StateResponse {
	st := sess.Controller.State()
	items := s.categoryItems(st.Filter)
	cats := make([]CategoryJSON, len(items))
	for i, c := range items {
		cats[i] = CategoryJSON{Name: c.Name, Color: c.Color, Active: c.Active}
	}
	return StateResponse{
		Stats:      sess.Dashboard.Stats.Stats(),
		Categories: cats,
		Search:     st.Filter.Search,
		Mode:       st.Mode,
		SortField:  st.SortField,
	}
}

// categoryItems lists the dataset's categories in first-seen order, followed
// by any category toggled on that the dataset does not contain.
func (s *Server) categoryItems(f core.Filter) []templates.CategoryItem {
	seen := make(map[string]bool)
	var items []templates.CategoryItem
	for _, c := range s.store.Categories() {
		seen[c] = true
		items = append(items, templates.CategoryItem{
			Name:   c,
			Color:  s.palette.Color(c),
			Active: f.Active.Has(c),
		})
	}
	for _, c := range f.Active.Sorted() {
		if !seen[c] {
			items = append(items, templates.CategoryItem{Name: c, Color: s.palette.Color(c), Active: true})
		}
	}
	return items
}

// formValue returns a posted form value, which must be present but may be empty.
func formValue(r *http.Request, key string) (string, error) {
	if err := r.ParseForm(); err != nil {
		return "", fmt.Errorf("%w: %s: %v", errMissingParameter, key, err)
	}
	vals, ok := r.PostForm[key]
	if !ok || len(vals) == 0 {
		return "", fmt.Errorf("%w: %s", errMissingParameter, key)
	}
	return vals[0], nil
}
