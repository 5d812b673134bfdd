package grid

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func mustCalendar(t *testing.T, cfg Config) *Calendar {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRejectsInvertedRange(t *testing.T) {
	_, err := New(Config{
		Start:          DateUTC(2022, time.February, 1),
		End:            DateUTC(2022, time.January, 1),
		FirstDayOfWeek: time.Monday,
	})
	var ire *InvalidRangeError
	if !errors.As(err, &ire) {
		t.Fatalf("expected *InvalidRangeError, got %v", err)
	}
}

func TestMonthModeSingleMonth(t *testing.T) {
	c := mustCalendar(t, Config{
		Start:          DateUTC(2022, time.January, 1),
		End:            DateUTC(2022, time.January, 31),
		FirstDayOfWeek: time.Monday,
		OutDatePolicy:  OutDateEndOfRow,
	})
	if c.PageCount() != 1 {
		t.Fatalf("expected 1 page, got %d", c.PageCount())
	}
	page, err := c.Page(0)
	if err != nil {
		t.Fatalf("Page(0): %v", err)
	}
	if len(page.Days) != 42 || len(page.Rows()) != 6 {
		t.Fatalf("expected 42 cells in 6 rows, got %d cells in %d rows", len(page.Days), len(page.Rows()))
	}
}

func TestPageIndexOutOfRange(t *testing.T) {
	c := mustCalendar(t, Config{
		Start:          DateUTC(2022, time.January, 1),
		End:            DateUTC(2022, time.March, 31),
		FirstDayOfWeek: time.Monday,
	})
	for _, idx := range []int{-1, c.PageCount()} {
		_, err := c.Page(idx)
		var oor *IndexOutOfRangeError
		if !errors.As(err, &oor) {
			t.Fatalf("Page(%d): expected *IndexOutOfRangeError, got %v", idx, err)
		}
	}
}

func TestPageCountMatchesIndexSpan(t *testing.T) {
	configs := []Config{
		{Start: DateUTC(2022, time.January, 1), End: DateUTC(2022, time.December, 31), FirstDayOfWeek: time.Monday},
		{Start: DateUTC(2022, time.January, 15), End: DateUTC(2023, time.February, 10), FirstDayOfWeek: time.Sunday},
		{Start: DateUTC(2022, time.January, 5), End: DateUTC(2022, time.January, 5), FirstDayOfWeek: time.Monday, Mode: WeekMode},
		{Start: DateUTC(2022, time.January, 5), End: DateUTC(2022, time.March, 20), FirstDayOfWeek: time.Monday, Mode: WeekMode},
	}
	for _, cfg := range configs {
		c := mustCalendar(t, cfg)
		span := c.PageIndexForDate(cfg.End) - c.PageIndexForDate(cfg.Start) + 1
		if c.PageCount() != span {
			t.Errorf("%v mode %v: PageCount()=%d, index span=%d", cfg.Start.Format("2006-01-02"), cfg.Mode, c.PageCount(), span)
		}
	}
}

func TestRoundTripEveryDateInRange(t *testing.T) {
	for _, cfg := range []Config{
		{Start: DateUTC(2022, time.January, 10), End: DateUTC(2022, time.April, 20), FirstDayOfWeek: time.Monday, OutDatePolicy: OutDateEndOfGrid},
		{Start: DateUTC(2022, time.January, 10), End: DateUTC(2022, time.April, 20), FirstDayOfWeek: time.Sunday, Mode: WeekMode},
	} {
		c := mustCalendar(t, cfg)
		for d := cfg.Start; !d.After(cfg.End); d = d.AddDate(0, 0, 1) {
			idx := c.PageIndexForDate(d)
			if idx < 0 || idx >= c.PageCount() {
				t.Fatalf("mode %v: index %d for in-range date %s", cfg.Mode, idx, d.Format("2006-01-02"))
			}
			page, err := c.Page(idx)
			if err != nil {
				t.Fatalf("Page(%d): %v", idx, err)
			}
			found := false
			for _, day := range page.Days {
				if day.Date.Equal(d) && (day.Position == MonthDate || day.Position == RangeDate) {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("mode %v: page %d does not own date %s", cfg.Mode, idx, d.Format("2006-01-02"))
			}
		}
	}
}

func TestPageAnchorInverse(t *testing.T) {
	c := mustCalendar(t, Config{
		Start:          DateUTC(2022, time.January, 5),
		End:            DateUTC(2022, time.June, 20),
		FirstDayOfWeek: time.Monday,
		Mode:           WeekMode,
	})
	for i := 0; i < c.PageCount(); i++ {
		anchor := c.PageAnchor(i)
		if got := c.PageIndexForDate(anchor); got != i {
			t.Fatalf("PageIndexForDate(PageAnchor(%d)) = %d", i, got)
		}
	}
}

func TestOutOfBoundDatesYieldOutOfBoundIndexes(t *testing.T) {
	c := mustCalendar(t, Config{
		Start:          DateUTC(2022, time.March, 5),
		End:            DateUTC(2022, time.April, 20),
		FirstDayOfWeek: time.Monday,
		Mode:           WeekMode,
	})
	before := c.PageIndexForDate(DateUTC(2022, time.February, 1))
	after := c.PageIndexForDate(DateUTC(2022, time.June, 1))
	if before >= 0 {
		t.Fatalf("date before range should map below 0, got %d", before)
	}
	if after < c.PageCount() {
		t.Fatalf("date after range should map at/above PageCount, got %d", after)
	}
}

func TestRegenerationIsIdempotent(t *testing.T) {
	cfg := Config{
		Start:          DateUTC(2022, time.January, 1),
		End:            DateUTC(2022, time.December, 31),
		FirstDayOfWeek: time.Monday,
		OutDatePolicy:  OutDateEndOfRow,
	}
	a := mustCalendar(t, cfg)
	b := mustCalendar(t, cfg)
	if a.PageCount() != b.PageCount() {
		t.Fatalf("page counts differ: %d vs %d", a.PageCount(), b.PageCount())
	}
	for i := 0; i < a.PageCount(); i++ {
		pa, _ := a.Page(i)
		pb, _ := b.Page(i)
		if !reflect.DeepEqual(pa, pb) {
			t.Fatalf("page %d differs between identical configurations", i)
		}
	}
}

func TestOneDayMonthRange(t *testing.T) {
	c := mustCalendar(t, Config{
		Start:          DateUTC(2022, time.January, 5),
		End:            DateUTC(2022, time.January, 5),
		FirstDayOfWeek: time.Monday,
		OutDatePolicy:  OutDateEndOfGrid,
	})
	if c.PageCount() != 1 {
		t.Fatalf("expected 1 page, got %d", c.PageCount())
	}
	page, err := c.Page(0)
	if err != nil {
		t.Fatalf("Page(0): %v", err)
	}
	// The whole January page is generated; the bound only limits which
	// pages exist, not the cells of the page holding the bound.
	if len(page.Days) != 42 {
		t.Fatalf("expected a full 42-cell page, got %d", len(page.Days))
	}
	found := false
	for _, d := range page.Days {
		if d.Date.Equal(DateUTC(2022, time.January, 5)) && d.Position == MonthDate {
			found = true
		}
	}
	if !found {
		t.Fatal("bound date missing from its page")
	}
}

func TestDaysBetweenMultiCenturySpans(t *testing.T) {
	// One full Gregorian cycle is 146097 days; time.Duration would
	// saturate well before two of them.
	cases := []struct {
		a, b time.Time
		want int
	}{
		{DateUTC(2022, time.January, 1), DateUTC(2022, time.January, 2), 1},
		{DateUTC(2022, time.March, 1), DateUTC(2022, time.February, 28), -1},
		{DateUTC(2020, time.February, 28), DateUTC(2020, time.March, 1), 2},
		{DateUTC(1600, time.January, 1), DateUTC(2000, time.January, 1), 146097},
		{DateUTC(1600, time.January, 1), DateUTC(2400, time.January, 1), 292194},
		{DateUTC(1000, time.January, 1), DateUTC(3000, time.January, 1), 5 * 146097},
	}
	for _, c := range cases {
		if got := DaysBetween(c.a, c.b); got != c.want {
			t.Errorf("DaysBetween(%s, %s) = %d, want %d",
				c.a.Format("2006-01-02"), c.b.Format("2006-01-02"), got, c.want)
		}
	}
}

func TestWeekModeMultiCenturyPageCount(t *testing.T) {
	c := mustCalendar(t, Config{
		Start:          DateUTC(1600, time.January, 3), // a Monday, proleptic Gregorian
		End:            DateUTC(2400, time.January, 2), // a Sunday, 41742 weeks of days in between
		FirstDayOfWeek: time.Monday,
		Mode:           WeekMode,
	})
	// 292194 days / 7 = 41742 whole weeks, inclusive of both endpoints.
	if got := c.PageCount(); got != 41742 {
		t.Fatalf("expected 41742 week pages, got %d", got)
	}
	if got := c.PageIndexForDate(DateUTC(2400, time.January, 2)); got != 41741 {
		t.Fatalf("end bound should land on the last page, got index %d", got)
	}
}

func TestNormalizeTruncatesTimestamps(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	ts := time.Date(2022, time.January, 5, 23, 30, 0, 0, loc)
	if got := Normalize(ts); !got.Equal(DateUTC(2022, time.January, 5)) {
		t.Fatalf("Normalize kept time-of-day: %s", got)
	}
}
