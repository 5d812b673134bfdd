package grid

import "time"

// Config is the full range configuration of a calendar. It is validated
// once, when the Calendar is built; all page and index arithmetic after
// that assumes the validated tuple and is total.
type Config struct {
	// Start and End are the inclusive first/last dates of the whole
	// calendar. Month mode pages cover the months containing them.
	Start time.Time
	End   time.Time

	// FirstDayOfWeek is the weekday each grid row begins on.
	FirstDayOfWeek time.Weekday

	// OutDatePolicy applies to month pages only; week pages are always a
	// single adjusted week with no padding.
	OutDatePolicy OutDatePolicy

	Mode Mode
}

// Calendar answers page-count, page-materialization and index<->date
// queries for one validated configuration. It holds no page storage;
// every Page call regenerates from scratch and is side-effect free, so a
// Calendar may be shared between readers without locking.
type Calendar struct {
	cfg Config

	// Week-mode arithmetic origin: the configured range snapped outward
	// to week boundaries. Unused in month mode.
	adjStart time.Time
	adjEnd   time.Time

	count int
}

// New validates cfg and builds a Calendar for it. Bounds are normalized
// to midnight UTC first, so callers may pass timestamps. A start bound
// after the end bound yields an *InvalidRangeError and no Calendar; the
// caller's previous Calendar (if any) stays untouched.
func New(cfg Config) (*Calendar, error) {
	cfg.Start = Normalize(cfg.Start)
	cfg.End = Normalize(cfg.End)
	if cfg.Start.After(cfg.End) {
		return nil, &InvalidRangeError{Start: cfg.Start, End: cfg.End}
	}

	c := &Calendar{cfg: cfg}
	switch cfg.Mode {
	case WeekMode:
		c.adjStart, c.adjEnd = AdjustWeekRange(cfg.Start, cfg.End, cfg.FirstDayOfWeek)
		// Inclusive of both endpoint weeks.
		c.count = WeeksBetween(c.adjStart, c.adjEnd) + 1
	default:
		c.count = MonthsBetween(cfg.Start, cfg.End) + 1
	}
	return c, nil
}

// Config returns the validated configuration this calendar was built from.
func (c *Calendar) Config() Config { return c.cfg }

// AdjustedRange returns the week-snapped bounds used as the week-mode
// arithmetic origin. In month mode it returns the configured bounds as-is.
func (c *Calendar) AdjustedRange() (time.Time, time.Time) {
	if c.cfg.Mode == WeekMode {
		return c.adjStart, c.adjEnd
	}
	return c.cfg.Start, c.cfg.End
}

// PageCount returns the total number of pages, inclusive of the pages
// holding both bounds.
func (c *Calendar) PageCount() int { return c.count }

// Page materializes the index-th page. Index must be in [0, PageCount());
// anything else is an *IndexOutOfRangeError.
func (c *Calendar) Page(index int) (Page, error) {
	if index < 0 || index >= c.count {
		return Page{}, &IndexOutOfRangeError{Index: index, Count: c.count}
	}
	if c.cfg.Mode == WeekMode {
		return WeekPage(c.PageAnchor(index), c.cfg.Start, c.cfg.End), nil
	}
	return MonthPage(c.PageAnchor(index), c.cfg.FirstDayOfWeek, c.cfg.OutDatePolicy), nil
}

// PageAnchor returns the index-th page's anchor date in closed form,
// without materializing the page.
func (c *Calendar) PageAnchor(index int) time.Time {
	if c.cfg.Mode == WeekMode {
		return c.adjStart.AddDate(0, 0, 7*index)
	}
	return DateUTC(c.cfg.Start.Year(), c.cfg.Start.Month()+time.Month(index), 1)
}

// PageIndexForDate returns the index of the page containing date, in
// closed form. Dates outside the configured bounds produce an index
// outside [0, PageCount()) — never a panic — and the caller must
// bounds-check before using it.
func (c *Calendar) PageIndexForDate(date time.Time) int {
	date = Normalize(date)
	if c.cfg.Mode == WeekMode {
		return WeeksBetween(c.adjStart, date)
	}
	return MonthsBetween(c.cfg.Start, date)
}

// Contains reports whether date lies within the configured bounds.
func (c *Calendar) Contains(date time.Time) bool {
	date = Normalize(date)
	return !date.Before(c.cfg.Start) && !date.After(c.cfg.End)
}
