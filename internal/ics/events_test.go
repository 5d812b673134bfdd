package ics

import (
	"strings"
	"testing"
	"time"

	"calgrid/internal/grid"
)

const rawFeed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:one@test
DTSTART:20220110T090000Z
DTEND:20220110T100000Z
SUMMARY:Standup
END:VEVENT
BEGIN:VEVENT
UID:two@test
DTSTART:20220110T140000Z
DTEND:20220110T150000Z
SUMMARY:Review
END:VEVENT
BEGIN:VEVENT
UID:three@test
DTSTART:20220301T090000Z
DTEND:20220301T100000Z
SUMMARY:Outside range
END:VEVENT
END:VCALENDAR
`

// sampleFeed carries the CRLF line endings real feeds use.
var sampleFeed = strings.ReplaceAll(rawFeed, "\n", "\r\n")

func TestCountByDay(t *testing.T) {
	results := []FetchResult{{
		Source: Source{ID: "test", URL: "https://example.com/cal.ics"},
		Body:   []byte(sampleFeed),
	}}

	counts := CountByDay(results,
		grid.DateUTC(2022, time.January, 1),
		grid.DateUTC(2022, time.January, 31),
	)

	if got := counts.Count(grid.DateUTC(2022, time.January, 10)); got != 2 {
		t.Fatalf("expected 2 events on 2022-01-10, got %d", got)
	}
	if got := counts.Count(grid.DateUTC(2022, time.March, 1)); got != 0 {
		t.Fatalf("out-of-range event counted: %d", got)
	}
}

func TestCountByDaySkipsBrokenFeed(t *testing.T) {
	results := []FetchResult{
		{Source: Source{ID: "broken"}, Body: []byte("not an ics feed")},
		{Source: Source{ID: "ok"}, Body: []byte(sampleFeed)},
	}
	counts := CountByDay(results,
		grid.DateUTC(2022, time.January, 1),
		grid.DateUTC(2022, time.January, 31),
	)
	if got := counts.Count(grid.DateUTC(2022, time.January, 10)); got != 2 {
		t.Fatalf("healthy feed should still count, got %d", got)
	}
}
