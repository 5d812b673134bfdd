package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"calgrid/internal/config"
	"calgrid/internal/grid"
	"calgrid/internal/ics"
	appLog "calgrid/internal/log"
	"calgrid/internal/selection"
)

const dateLayout = "2006-01-02"

// gridResponse is the JSON shape for /api/grid.
type gridResponse struct {
	Mode          string `json:"mode"`
	Start         string `json:"start"`
	End           string `json:"end"`
	AdjustedStart string `json:"adjusted_start"`
	AdjustedEnd   string `json:"adjusted_end"`
	WeekStart     string `json:"week_start"`
	OutDatePolicy string `json:"out_date_policy"`
	PageCount     int    `json:"page_count"`
}

// dayDTO is a JSON-friendly view of one day cell, enriched with the
// host-side styling inputs (selection, marks, event badges).
type dayDTO struct {
	Date             string `json:"date"`
	Position         string `json:"position"`
	Selected         bool   `json:"selected"`
	BoundarySelected bool   `json:"boundary_selected"`
	Marked           bool   `json:"marked"`
	Events           int    `json:"events,omitempty"`
}

// pageResponse is the JSON shape for /api/page.
type pageResponse struct {
	Index  int      `json:"index"`
	Anchor string   `json:"anchor"`
	Rows   int      `json:"rows"`
	Days   []dayDTO `json:"days"`
}

// pageIndexResponse is the JSON shape for /api/page-index. InBounds is
// the caller's bounds-check: the index is closed-form and may fall
// outside [0, page_count) for out-of-range dates.
type pageIndexResponse struct {
	Index    int    `json:"index"`
	InBounds bool   `json:"in_bounds"`
	Anchor   string `json:"anchor,omitempty"`
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	requestsTotal.WithLabelValues("grid").Inc()
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}

	st, _ := s.current()
	cfg := st.cal.Config()
	adjStart, adjEnd := st.cal.AdjustedRange()

	writeJSON(w, http.StatusOK, gridResponse{
		Mode:          cfg.Mode.String(),
		Start:         cfg.Start.Format(dateLayout),
		End:           cfg.End.Format(dateLayout),
		AdjustedStart: adjStart.Format(dateLayout),
		AdjustedEnd:   adjEnd.Format(dateLayout),
		WeekStart:     cfg.FirstDayOfWeek.String(),
		OutDatePolicy: cfg.OutDatePolicy.String(),
		PageCount:     st.cal.PageCount(),
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	requestsTotal.WithLabelValues("page").Inc()
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}

	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	st, anchors := s.current()

	started := time.Now()
	page, err := st.cal.Page(index)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pageGenSeconds.Observe(time.Since(started).Seconds())

	writeJSON(w, http.StatusOK, pageResponse{
		Index:  index,
		Anchor: page.Anchor.Format(dateLayout),
		Rows:   len(page.Rows()),
		Days:   dayDTOs(st, anchors, page),
	})
}

func dayDTOs(st *state, anchors selection.Anchors, page grid.Page) []dayDTO {
	out := make([]dayDTO, 0, len(page.Days))
	for _, d := range page.Days {
		dto := dayDTO{
			Date:     d.Date.Format(dateLayout),
			Position: d.Position.String(),
			Marked:   st.marked.Contains(d.Date),
			Events:   st.events.Count(d.Date),
		}
		switch d.Position {
		case grid.InDate, grid.OutDate:
			dto.BoundarySelected = selection.BoundaryDateSelected(d.Date, d.Position, anchors.Start, anchors.End)
		default:
			dto.Selected = selection.DaySelected(d.Date, anchors.Start, anchors.End)
		}
		out = append(out, dto)
	}
	return out
}

func (s *Server) handlePageIndex(w http.ResponseWriter, r *http.Request) {
	requestsTotal.WithLabelValues("page_index").Inc()
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}

	date, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("date"), time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	st, _ := s.current()
	index := st.cal.PageIndexForDate(date)

	resp := pageIndexResponse{Index: index}
	if index >= 0 && index < st.cal.PageCount() {
		resp.InBounds = true
		resp.Anchor = st.cal.PageAnchor(index).Format(dateLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

// selectRequest is the POST body for /api/select.
type selectRequest struct {
	Date string `json:"date"`
}

// handleSelect folds a click into the server-held anchors (POST), clears
// them (DELETE), or reports them (GET).
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	requestsTotal.WithLabelValues("select").Inc()

	switch r.Method {
	case http.MethodGet:
		_, anchors := s.current()
		writeJSON(w, http.StatusOK, anchors)

	case http.MethodDelete:
		s.mu.Lock()
		s.anchors.Clear()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, selection.Anchors{})

	case http.MethodPost:
		var req selectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		clicked, err := time.ParseInLocation(dateLayout, req.Date, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		s.mu.Lock()
		s.anchors.Fold(clicked)
		anchors := s.anchors
		s.mu.Unlock()

		appLog.Debug("selection folded", "clicked", req.Date,
			"start", anchors.Start.Format(dateLayout), "ranged", anchors.IsRanged())
		writeJSON(w, http.StatusOK, anchors)

	default:
		writeError(w, http.StatusMethodNotAllowed, "GET, POST or DELETE")
	}
}

// handleConfig reads (GET) or atomically replaces (PUT) the whole
// configuration. A rejected replace leaves the previous configuration
// serving as before.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	requestsTotal.WithLabelValues("config").Inc()

	switch r.Method {
	case http.MethodGet:
		st, _ := s.current()
		writeJSON(w, http.StatusOK, redactedConfig(st.cfg))

	case http.MethodPut:
		var cfg config.Config
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		cfg.Normalize()

		if err := s.ApplyConfig(&cfg); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if s.configPath != "" {
			if err := cfg.Save(s.configPath); err != nil {
				appLog.Error("config save failed", err, "path", s.configPath)
			}
		}
		writeJSON(w, http.StatusOK, redactedConfig(&cfg))

	default:
		writeError(w, http.StatusMethodNotAllowed, "GET or PUT")
	}
}

// redactedConfig returns a copy of cfg safe to hand back to clients:
// the basic-auth password never leaves the server.
func redactedConfig(cfg *config.Config) *config.Config {
	out := *cfg
	if cfg.BasicAuth != nil {
		ba := *cfg.BasicAuth
		ba.Password = ""
		out.BasicAuth = &ba
	}
	return &out
}

// RefreshFeeds fetches all configured ICS sources and swaps in the new
// per-day event counts. Fetch errors are logged per source; whatever
// parsed still lands.
func (s *Server) RefreshFeeds(ctx context.Context) {
	st, _ := s.current()
	sources := st.cfg.Sources()
	if len(sources) == 0 {
		return
	}

	// Per-source failures are already logged by the fetcher.
	results, _ := s.fetcher.FetchAll(ctx, sources)

	gc := st.cal.Config()
	counts := ics.CountByDay(results, gc.Start, gc.End)

	s.mu.Lock()
	// The config may have been replaced while fetching; only install
	// counts that match the state they were computed for.
	if s.st == st {
		s.st = &state{cfg: st.cfg, cal: st.cal, marked: st.marked, events: counts}
	}
	s.mu.Unlock()

	appLog.Info("feeds refreshed", "sources", len(sources), "days_with_events", len(counts))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("response encode failed", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
