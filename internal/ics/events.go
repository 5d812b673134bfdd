package ics

import (
	"bytes"
	"time"

	ical "github.com/arran4/golang-ical"

	"calgrid/internal/grid"
	appLog "calgrid/internal/log"
)

// DayCount maps "2006-01-02" date keys to the number of events starting
// on that day across all parsed feeds.
type DayCount map[string]int

// Count returns the number of events starting on date.
func (d DayCount) Count(date time.Time) int {
	return d[grid.Normalize(date).Format("2006-01-02")]
}

// CountByDay parses every fetched feed and tallies events per day inside
// the inclusive [rangeStart, rangeEnd] window. A feed that fails to parse
// is logged and skipped; the tally from the remaining feeds still stands.
func CountByDay(results []FetchResult, rangeStart, rangeEnd time.Time) DayCount {
	counts := make(DayCount)
	for _, res := range results {
		cal, err := ical.ParseCalendar(bytes.NewReader(res.Body))
		if err != nil {
			appLog.Error("feed parse failed", err, "id", res.Source.ID, "url", redactURL(res.Source.URL))
			continue
		}
		n := 0
		for _, ev := range cal.Events() {
			start, err := ev.GetStartAt()
			if err != nil {
				continue
			}
			date := grid.Normalize(start)
			if date.Before(rangeStart) || date.After(rangeEnd) {
				continue
			}
			counts[date.Format("2006-01-02")]++
			n++
		}
		appLog.Info("feed counted", "id", res.Source.ID, "events_in_range", n, "from_cache", res.FromCache)
	}
	return counts
}
