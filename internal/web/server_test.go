package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/agrimap/internal/config"
	"github.com/JonMunkholm/agrimap/internal/core"
	"github.com/JonMunkholm/agrimap/internal/dataset"
	"github.com/JonMunkholm/agrimap/internal/export"
	"github.com/google/uuid"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{RequestTimeout: 5 * time.Second},
		Data:     config.DataConfig{Locale: "en"},
		Session:  config.SessionConfig{TTL: time.Minute, MaxSessions: 10, CookieName: "agrimap_session"},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	s := NewServer(core.NewRecordStore(dataset.Sample()), nil, cfg, dataset.SampleName)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

// client replays the session cookie the server hands out.
type client struct {
	t      *testing.T
	s      *Server
	cookie *http.Cookie
	htmx   bool
}

func newClient(t *testing.T, s *Server) *client {
	return &client{t: t, s: s}
}

func (c *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	if c.htmx {
		req.Header.Set("HX-Request", "true")
	}

	rec := httptest.NewRecorder()
	c.s.Router().ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == c.s.cfg.Session.CookieName {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) post(path string, kv ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	form := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		form.Set(kv[i], kv[i+1])
	}
	return c.do(http.MethodPost, path, form)
}

func (c *client) state() StateResponse {
	c.t.Helper()
	rec := c.do(http.MethodGet, "/api/state", nil)
	if rec.Code != http.StatusOK {
		c.t.Fatalf("GET /api/state status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var st StateResponse
	decode(c.t, rec, &st)
	return st
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decode(t, rec, &resp)
	return resp.Code
}

func TestDashboardPage(t *testing.T) {
	s := newTestServer(t, nil)
	c := newClient(t, s)

	rec := c.do(http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if c.cookie == nil {
		t.Fatal("no session cookie set")
	}
	if !c.cookie.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}
	if _, err := uuid.Parse(c.cookie.Value); err != nil {
		t.Errorf("cookie value %q is not a uuid", c.cookie.Value)
	}

	body := rec.Body.String()
	for _, want := range []string{
		PageTitle,
		`id="stats"`,
		`id="total-waste">1,310<`,
		`id="visible-businesses">5<`,
		`data-mode="map"`,
		"Fruit &amp; Vegetable Processing",
		"/api/export",
		"tile.openstreetmap.org",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("Content-Security-Policy header not set")
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestInitialState(t *testing.T) {
	c := newClient(t, newTestServer(t, nil))
	st := c.state()

	if st.Stats.Total != 5 || st.Stats.Visible != 5 {
		t.Errorf("total, visible = %d, %d, want 5, 5", st.Stats.Total, st.Stats.Visible)
	}
	if st.Stats.TotalWaste != 1310 {
		t.Errorf("totalWaste = %v, want 1310", st.Stats.TotalWaste)
	}
	if st.Mode != core.ViewMap {
		t.Errorf("mode = %q, want map", st.Mode)
	}
	if len(st.Categories) != 1 || !st.Categories[0].Active {
		t.Errorf("categories = %+v, want one active category", st.Categories)
	}
}

func TestUnknownSessionCookie(t *testing.T) {
	s := newTestServer(t, nil)
	stale := &http.Cookie{Name: s.cfg.Session.CookieName, Value: uuid.New().String()}

	c := newClient(t, s)
	c.cookie = stale
	rec := c.do(http.MethodGet, "/api/state", nil)
	if rec.Code != http.StatusGone {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusGone)
	}
	if code := errorCode(t, rec); code != "SES001" {
		t.Errorf("code = %q, want SES001", code)
	}

	// The page starts over with a fresh session.
	rec = c.do(http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("page status = %d, want 200", rec.Code)
	}
	if c.cookie.Value == stale.Value {
		t.Error("page kept the stale session id")
	}
	if st := c.state(); st.Stats.Visible != 5 {
		t.Errorf("visible = %d, want 5", st.Stats.Visible)
	}
}

func TestSearch(t *testing.T) {
	c := newClient(t, newTestServer(t, nil))

	rec := c.post("/api/search", "q", "verdun")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var st StateResponse
	decode(t, rec, &st)
	if st.Stats.Visible != 1 || st.Search != "verdun" {
		t.Errorf("visible, search = %d, %q, want 1, verdun", st.Stats.Visible, st.Search)
	}

	c.post("/api/view", "mode", "table")
	var table TableResponse
	decode(t, c.do(http.MethodGet, "/api/table", nil), &table)
	if len(table.Rows) != 1 || table.Rows[0].ID != "2" {
		t.Errorf("rows = %+v, want business 2 only", table.Rows)
	}

	decode(t, c.post("/api/search", "q", ""), &st)
	if st.Stats.Visible != 5 {
		t.Errorf("visible after clearing = %d, want 5", st.Stats.Visible)
	}
}

func TestToggleCategory(t *testing.T) {
	c := newClient(t, newTestServer(t, nil))
	const cat = "Fruit & Vegetable Processing"

	tests := []struct {
		category    string
		wantVisible int
	}{
		{cat, 0},
		{cat, 5},
		{"Breweries", 5},
		{"Breweries", 5},
	}
	for i, tt := range tests {
		rec := c.post("/api/categories/toggle", "category", tt.category)
		if rec.Code != http.StatusOK {
			t.Fatalf("step %d: status = %d, want 200", i, rec.Code)
		}
		var st StateResponse
		decode(t, rec, &st)
		if st.Stats.Visible != tt.wantVisible {
			t.Errorf("step %d: toggle %q visible = %d, want %d", i, tt.category, st.Stats.Visible, tt.wantVisible)
		}
	}
}

func TestRequestErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		form     url.Values
		wantCode string
	}{
		{"toggle without category", "/api/categories/toggle", url.Values{}, "REQ001"},
		{"sort without field", "/api/sort", url.Values{}, "REQ001"},
		{"sort by unknown field", "/api/sort", url.Values{"field": {"bogus"}}, "VIEW001"},
		{"view without mode", "/api/view", url.Values{}, "REQ001"},
		{"invalid view mode", "/api/view", url.Values{"mode": {"globe"}}, "VIEW002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, newTestServer(t, nil))
			before := c.state()

			rec := c.do(http.MethodPost, tt.path, tt.form)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}

			after := c.state()
			if after.Stats != before.Stats || after.Mode != before.Mode || after.SortField != before.SortField {
				t.Errorf("state changed on error: %+v -> %+v", before, after)
			}
		})
	}
}

func TestSortByWaste(t *testing.T) {
	c := newClient(t, newTestServer(t, nil))
	c.post("/api/view", "mode", "table")

	rec := c.post("/api/sort", "field", "annual_waste_tonnes")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var table TableResponse
	decode(t, c.do(http.MethodGet, "/api/table", nil), &table)
	var ids []string
	for _, r := range table.Rows {
		ids = append(ids, r.ID)
	}
	if got, want := strings.Join(ids, ","), "2,3,5,4,1"; got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
	if table.SortField != "annual_waste_tonnes" {
		t.Errorf("sortField = %q, want annual_waste_tonnes", table.SortField)
	}
}

func TestTableRenderedOnlyWhenVisible(t *testing.T) {
	c := newClient(t, newTestServer(t, nil))

	var table TableResponse
	decode(t, c.do(http.MethodGet, "/api/table", nil), &table)
	if len(table.Rows) != 0 {
		t.Errorf("rows in map view = %d, want 0", len(table.Rows))
	}

	c.post("/api/view", "mode", "table")
	decode(t, c.do(http.MethodGet, "/api/table", nil), &table)
	if len(table.Rows) != 5 {
		t.Errorf("rows in table view = %d, want 5", len(table.Rows))
	}
}

func TestMarkers(t *testing.T) {
	c := newClient(t, newTestServer(t, nil))

	var resp MarkersResponse
	decode(t, c.do(http.MethodGet, "/api/markers", nil), &resp)
	if len(resp.Markers) != 5 {
		t.Fatalf("markers = %d, want 5", len(resp.Markers))
	}
	if resp.View.Zoom != 11 {
		t.Errorf("zoom = %d, want 11", resp.View.Zoom)
	}
	if m := resp.Markers[0]; m.FillColor != "#dc2626" || m.Radius != 12 {
		t.Errorf("marker style = %s r%d, want #dc2626 r12", m.FillColor, m.Radius)
	}

	// Table then map: markers are replaced, never appended.
	c.post("/api/search", "q", "verdun")
	c.post("/api/view", "mode", "table")
	c.post("/api/view", "mode", "map")
	decode(t, c.do(http.MethodGet, "/api/markers", nil), &resp)
	if len(resp.Markers) != 1 || resp.Markers[0].ID != "2" {
		t.Errorf("markers after search = %+v, want business 2 only", resp.Markers)
	}
}

func TestHTMXDispatch(t *testing.T) {
	c := newClient(t, newTestServer(t, nil))
	c.do(http.MethodGet, "/", nil)
	c.htmx = true

	trigger := func(rec *httptest.ResponseRecorder) updateDetail {
		t.Helper()
		var events map[string]updateDetail
		if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &events); err != nil {
			t.Fatalf("HX-Trigger %q: %v", rec.Header().Get("HX-Trigger"), err)
		}
		return events[updateEvent]
	}

	rec := c.post("/api/view", "mode", "table")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, `<section id="stats"`) {
		t.Errorf("response does not start with the stats panel: %.60s", body)
	}
	if !strings.Contains(body, `<tbody id="table-body" hx-swap-oob="true">`) {
		t.Error("response missing out-of-band table body")
	}
	if !strings.Contains(body, "Green Valley Processing") {
		t.Error("table body missing rows")
	}
	if d := trigger(rec); d.Mode != core.ViewTable || d.Resize {
		t.Errorf("trigger = %+v, want table without resize", d)
	}

	rec = c.post("/api/view", "mode", "map")
	if d := trigger(rec); d.Mode != core.ViewMap || !d.Resize {
		t.Errorf("trigger = %+v, want map with resize", d)
	}

	rec = c.post("/api/sort", "field", "bogus")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := rec.Header().Get("HX-Retarget"); got != "#alerts" {
		t.Errorf("HX-Retarget = %q, want #alerts", got)
	}
	if !strings.Contains(rec.Body.String(), "VIEW001") {
		t.Errorf("error fragment missing code: %s", rec.Body.String())
	}
}

func TestExport(t *testing.T) {
	c := newClient(t, newTestServer(t, nil))
	c.post("/api/search", "q", "verdun")

	rec := c.do(http.MethodGet, "/api/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, export.FileName) {
		t.Errorf("Content-Disposition = %q, want filename %s", got, export.FileName)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}

	ds, err := dataset.ParseCSV(strings.NewReader(rec.Body.String()))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(ds.Records) != 1 || ds.Records[0].Name.String != "Green Valley Processing" {
		t.Errorf("exported records = %+v, want Green Valley Processing only", ds.Records)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	s := newTestServer(t, nil)
	a, b := newClient(t, s), newClient(t, s)
	a.do(http.MethodGet, "/", nil)
	b.do(http.MethodGet, "/", nil)

	a.post("/api/search", "q", "verdun")

	if got := a.state().Stats.Visible; got != 1 {
		t.Errorf("session a visible = %d, want 1", got)
	}
	if got := b.state().Stats.Visible; got != 5 {
		t.Errorf("session b visible = %d, want 5", got)
	}
	if got := s.Sessions().Len(); got != 2 {
		t.Errorf("sessions = %d, want 2", got)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2, ExportLimit: 1}
	c := newClient(t, newTestServer(t, cfg))

	for i := 0; i < 2; i++ {
		if rec := c.do(http.MethodGet, "/api/state", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}
	rec := c.do(http.MethodGet, "/api/state", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}
	if code := errorCode(t, rec); code != "RATE001" {
		t.Errorf("code = %q, want RATE001", code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var h HealthResponse
	decode(t, rec, &h)
	if h.Status != "ok" || h.Records != 5 || h.Source != dataset.SampleName {
		t.Errorf("health = %+v", h)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("health check created a session")
	}
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t, nil)
	for _, path := range []string{"/static/dashboard.js", "/static/dashboard.css"} {
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	defer rl.stop()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	got := []bool{rl.allow("a"), rl.allow("a"), rl.allow("a"), rl.allow("b")}
	want := []bool{true, true, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("allow #%d = %v, want %v", i, got[i], want[i])
		}
	}

	now = now.Add(time.Minute + time.Second)
	if !rl.allow("a") {
		t.Error("allow after window = false, want true")
	}
}
