// Package web serves the calendar grid over HTTP: a JSON API for pages,
// index lookups and selection folding, plus an HTML view that renders one
// page with the continuous selection highlight.
package web

import (
	"crypto/subtle"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"calgrid/internal/config"
	"calgrid/internal/grid"
	"calgrid/internal/ics"
	appLog "calgrid/internal/log"
	"calgrid/internal/marks"
	"calgrid/internal/selection"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calgrid_http_requests_total",
			Help: "HTTP requests served, by endpoint.",
		},
		[]string{"endpoint"},
	)
	pageGenSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "calgrid_page_generation_seconds",
			Help:    "Time spent generating calendar pages.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		},
	)
	metricsOnce sync.Once
)

func registerMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(requestsTotal, pageGenSeconds)
	})
}

// state is everything derived from one configuration. It is replaced as a
// whole on config changes so the index arithmetic always sees a
// consistent tuple.
type state struct {
	cfg    *config.Config
	cal    *grid.Calendar
	marked marks.Set
	events ics.DayCount
}

// Server holds the current configuration-derived state and the selection
// anchors. Both are swapped as whole values under the mutex; the grid and
// selection engines themselves are pure and need no locking.
type Server struct {
	mu      sync.RWMutex
	st      *state
	anchors selection.Anchors

	// configPath, when non-empty, is where successful config replaces
	// are persisted.
	configPath string

	fetcher *ics.Fetcher
	mux     *http.ServeMux
}

// NewServer builds a Server from cfg. The configuration is validated in
// full (range bounds included) before the server exists.
func NewServer(cfg *config.Config, configPath string) (*Server, error) {
	registerMetrics()

	st, err := buildState(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		st:         st,
		configPath: configPath,
		fetcher:    ics.NewFetcher(cfg.CacheDir),
		mux:        http.NewServeMux(),
	}
	s.registerRoutes()
	return s, nil
}

// buildState derives a complete state from cfg, or fails without side
// effects. An invalid range surfaces here as *grid.InvalidRangeError.
func buildState(cfg *config.Config) (*state, error) {
	gc, err := cfg.GridConfig()
	if err != nil {
		return nil, err
	}
	cal, err := grid.New(gc)
	if err != nil {
		return nil, err
	}

	rules, err := cfg.MarkRules()
	if err != nil {
		return nil, err
	}
	marked, err := marks.Expand(rules, marks.ExpandConfig{
		RangeStart: gc.Start,
		RangeEnd:   gc.End,
	})
	if err != nil {
		return nil, err
	}

	return &state{cfg: cfg, cal: cal, marked: marked}, nil
}

// ApplyConfig replaces the current configuration atomically. On any
// error the previous state stays in place untouched. The selection
// anchors are cleared, since they may reference dates outside the new
// bounds. Previously counted feed events are dropped for the same reason.
func (s *Server) ApplyConfig(cfg *config.Config) error {
	st, err := buildState(cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.st = st
	s.anchors.Clear()
	s.mu.Unlock()

	appLog.Info("config applied",
		"mode", cfg.Mode,
		"start", cfg.Start,
		"end", cfg.End,
		"week_start", cfg.WeekStart,
		"out_date_policy", cfg.OutDatePolicy,
		"pages", st.cal.PageCount(),
	)
	return nil
}

// current returns the state snapshot and anchors under a read lock.
func (s *Server) current() (*state, selection.Anchors) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st, s.anchors
}

// Handler returns the server's http.Handler. Basic auth is decided per
// request against the current configuration, so enabling it through a
// config replace takes effect immediately.
func (s *Server) Handler() http.Handler {
	return s.basicAuthMiddleware(s.mux)
}

// basicAuthMiddleware guards every endpoint except /health and /metrics.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		st, _ := s.current()
		ba := st.cfg.BasicAuth
		if ba == nil || ba.Username == "" || ba.Password == "" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, ba.Username) || !secureCompare(p, ba.Password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="calgrid", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/grid", s.handleGrid)
	s.mux.HandleFunc("/api/page", s.handlePage)
	s.mux.HandleFunc("/api/page-index", s.handlePageIndex)
	s.mux.HandleFunc("/api/select", s.handleSelect)
	s.mux.HandleFunc("/api/config", s.handleConfig)
	s.mux.HandleFunc("/calendar", s.handleCalendar)
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	requestsTotal.WithLabelValues("health").Inc()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
