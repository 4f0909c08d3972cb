// Package web serves the agrifood dashboard over HTTP.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/JonMunkholm/agrimap/internal/config"
	"github.com/JonMunkholm/agrimap/internal/core"
	"github.com/JonMunkholm/agrimap/internal/render"
	mw "github.com/JonMunkholm/agrimap/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"
)

//go:embed static
var staticFiles embed.FS

// Content-Security-Policy: Leaflet and htmx come from unpkg, tiles from
// OpenStreetMap. Inline styles carry the category swatch colors.
const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' https://unpkg.com; " +
	"style-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"img-src 'self' data: https://*.tile.openstreetmap.org https://unpkg.com; " +
	"connect-src 'self'; " +
	"frame-ancestors 'none'"

// Server is the HTTP server for the dashboard.
type Server struct {
	cfg      *config.Config
	store    *core.RecordStore
	engine   *core.Engine
	palette  *render.Palette
	tag      language.Tag
	source   string
	sessions *SessionStore
	limiters []*rateLimiter
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a server over a loaded store. source names where the
// data came from and is shown on the health endpoint.
func NewServer(store *core.RecordStore, palette *render.Palette, cfg *config.Config, source string) *Server {
	if palette == nil {
		palette = render.NewPalette(render.DefaultPalette, render.FallbackColor)
	}
	tag := core.ParseLocale(cfg.Data.Locale)

	s := &Server{
		cfg:     cfg,
		store:   store,
		engine:  core.NewEngine(store, core.NewSorter(tag)),
		palette: palette,
		tag:     tag,
		source:  source,
		router:  chi.NewRouter(),
	}
	s.sessions = NewSessionStore(cfg.Session.TTL, cfg.Session.MaxSessions, s.newSession)
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// newSession builds a controller with fresh projections. The controller's
// startup render fills the markers and statistics.
func (s *Server) newSession(id string) *Session {
	dash := render.NewDashboard(s.palette, s.tag)
	logger := slog.Default().With("session_id", id)
	return &Session{
		ID:         id,
		Dashboard:  dash,
		Controller: core.NewController(s.engine, dash.Renderers(), logger),
	}
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}

	s.router.Use(s.securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/healthz", s.handleHealth)

	s.router.With(s.session(true)).Get("/", s.handleDashboard)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimit(s.cfg.Rate.RequestsPerMinute))
		r.Use(s.session(false))

		r.Get("/state", s.handleState)
		r.Get("/markers", s.handleMarkers)
		r.Get("/table", s.handleTable)

		r.Post("/categories/toggle", s.handleToggleCategory)
		r.Post("/search", s.handleSearch)
		r.Post("/sort", s.handleSort)
		r.Post("/view", s.handleView)

		r.With(s.rateLimit(s.cfg.Rate.ExportLimit)).Get("/export", s.handleExport)
	})
}

// Start listens until Shutdown. The session sweeper runs until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	go s.sessions.RunSweeper(ctx, s.cfg.Session.SweepInterval)

	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr, "records", s.store.Len(), "source", s.source)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server and its background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, l := range s.limiters {
		l.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Sessions returns the session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		if s.cfg.Security.EnableCSP {
			w.Header().Set("Content-Security-Policy", contentSecurityPolicy)
		}

		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// session attaches the caller's session to the request context.
//
// A request without a cookie always gets a new session. A cookie naming an
// unknown or expired session gets a new one only when create is set; API
// routes answer ErrSessionNotFound instead so the page can prompt a reload.
func (s *Server) session(create bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(s.cfg.Session.CookieName)
			if err == nil && cookie.Value != "" {
				if sess, ok := s.sessions.Get(cookie.Value); ok {
					mw.SetSessionID(r.Context(), sess.ID)
					next.ServeHTTP(w, withSession(r, sess))
					return
				}
				if !create {
					s.respondError(w, r, ErrSessionNotFound, http.StatusGone)
					return
				}
			}

			sess := s.sessions.Create()
			http.SetCookie(w, s.sessionCookie(sess.ID))
			mw.SetSessionID(r.Context(), sess.ID)
			slog.Debug("session created", "session_id", sess.ID, "live", s.sessions.Len())
			next.ServeHTTP(w, withSession(r, sess))
		})
	}
}

func (s *Server) sessionCookie(id string) *http.Cookie {
	c := &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Session.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if s.cfg.Session.TTL > 0 {
		c.MaxAge = int(s.cfg.Session.TTL / time.Second)
	}
	return c
}

// rateLimit returns a per-IP limiter middleware, or a pass-through when rate
// limiting is disabled.
func (s *Server) rateLimit(perMinute int) func(http.Handler) http.Handler {
	if !s.cfg.Rate.Enabled || perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	rl := newRateLimiter(perMinute, time.Minute)
	s.limiters = append(s.limiters, rl)
	return rl.middleware(s)
}

// errRateLimited maps to RATE001.
var errRateLimited = errors.New("rate limit exceeded")

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every window until stopped.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if rl.now().Sub(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1, // consume one token
			lastReset: now,
		}
		return true
	}

	// Reset tokens if window has passed
	if now.Sub(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = now
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware rate limits by client IP. TrustedRealIP has already replaced
// RemoteAddr when the request came through a trusted proxy.
func (rl *rateLimiter) middleware(s *Server) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(clientIP(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(int(rl.window/time.Second)))
				s.respondError(w, r, errRateLimited, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
