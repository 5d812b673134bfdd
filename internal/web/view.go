package web

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"calgrid/internal/grid"
	appLog "calgrid/internal/log"
	"calgrid/internal/selection"
)

// viewDay is one cell of the rendered table.
type viewDay struct {
	Num     int
	Class   string
	Badge   int
	Present bool
}

// viewData feeds the /calendar template.
type viewData struct {
	Title     string
	Index     int
	PrevIndex int
	NextIndex int
	HasPrev   bool
	HasNext   bool
	Weekdays  []string
	Rows      [][]viewDay
}

// The page marks itself ready via data-ready="true" so the capture
// pipeline knows when to screenshot.
var calendarTmpl = template.Must(template.New("calendar").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
td, th { width: 3.2rem; height: 2.6rem; text-align: center; border: 1px solid #ddd; }
td.in, td.out { color: #aaa; }
td.selected { background: #cce4ff; }
td.boundary { background: #e4f0ff; }
td.cap { background: #66a3e0; color: #fff; }
td.marked { font-weight: bold; }
sup { color: #c00; }
nav a { margin-right: 1rem; }
</style>
</head>
<body data-ready="true">
<h1>{{.Title}}</h1>
<nav>
{{if .HasPrev}}<a href="/calendar?index={{.PrevIndex}}">&larr; prev</a>{{end}}
{{if .HasNext}}<a href="/calendar?index={{.NextIndex}}">next &rarr;</a>{{end}}
</nav>
<table>
<tr>{{range .Weekdays}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>
{{range .}}{{if .Present}}<td class="{{.Class}}">{{.Num}}{{if .Badge}}<sup>{{.Badge}}</sup>{{end}}</td>{{else}}<td></td>{{end}}{{end}}
</tr>
{{end}}</table>
</body>
</html>
`))

// handleCalendar renders one page as HTML. The continuous highlight works
// off two predicates: in-page days compare against the inclusive range,
// boundary cells (in-dates/out-dates) against the strict interior, so the
// band visually continues across the seam into neighboring pages.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	requestsTotal.WithLabelValues("calendar").Inc()

	st, anchors := s.current()

	index := 0
	if raw := r.URL.Query().Get("index"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "index must be an integer", http.StatusBadRequest)
			return
		}
		index = n
	} else if today := st.cal.PageIndexForDate(time.Now()); today >= 0 && today < st.cal.PageCount() {
		index = today
	}

	started := time.Now()
	page, err := st.cal.Page(index)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	pageGenSeconds.Observe(time.Since(started).Seconds())

	cfg := st.cal.Config()
	data := viewData{
		Title:     pageTitle(cfg.Mode, page),
		Index:     index,
		PrevIndex: index - 1,
		NextIndex: index + 1,
		HasPrev:   index > 0,
		HasNext:   index+1 < st.cal.PageCount(),
		Weekdays:  weekdayHeaders(cfg.FirstDayOfWeek),
		Rows:      viewRows(st, anchors, page),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := calendarTmpl.Execute(w, data); err != nil {
		appLog.Error("calendar render failed", err)
	}
}

func pageTitle(mode grid.Mode, page grid.Page) string {
	if mode == grid.WeekMode {
		return "Week of " + page.Anchor.Format("Jan 2, 2006")
	}
	return page.Anchor.Format("January 2006")
}

func weekdayHeaders(first time.Weekday) []string {
	out := make([]string, 7)
	for i := 0; i < 7; i++ {
		out[i] = time.Weekday((int(first) + i) % 7).String()[:3]
	}
	return out
}

func viewRows(st *state, anchors selection.Anchors, page grid.Page) [][]viewDay {
	rows := page.Rows()
	out := make([][]viewDay, 0, len(rows))
	for _, row := range rows {
		vr := make([]viewDay, 0, 7)
		for _, d := range row {
			vr = append(vr, viewDayFor(st, anchors, d))
		}
		// Under the no-out-date policy the last row may be short; pad with
		// absent cells so the table stays rectangular.
		for len(vr) < 7 {
			vr = append(vr, viewDay{})
		}
		out = append(out, vr)
	}
	return out
}

func viewDayFor(st *state, anchors selection.Anchors, d grid.Day) viewDay {
	vd := viewDay{Num: d.Date.Day(), Badge: st.events.Count(d.Date), Present: true}

	switch d.Position {
	case grid.InDate:
		vd.Class = "in"
	case grid.OutDate:
		vd.Class = "out"
	}

	switch {
	case anchors.IsRanged() && (d.Date.Equal(anchors.Start) || d.Date.Equal(anchors.End)):
		// Range endpoints get cap styling on their home page only.
		if d.Position == grid.MonthDate || d.Position == grid.RangeDate {
			vd.Class = join(vd.Class, "cap")
		}
	case selection.BoundaryDateSelected(d.Date, d.Position, anchors.Start, anchors.End):
		vd.Class = join(vd.Class, "boundary")
	case d.Position == grid.MonthDate || d.Position == grid.RangeDate:
		if selection.DaySelected(d.Date, anchors.Start, anchors.End) {
			vd.Class = join(vd.Class, "selected")
		}
	}

	if st.marked.Contains(d.Date) {
		vd.Class = join(vd.Class, "marked")
	}
	return vd
}

func join(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}
