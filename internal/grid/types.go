package grid

import (
	"fmt"
	"time"
)

// DayPosition classifies a day cell relative to the page it is rendered on.
type DayPosition int

const (
	// MonthDate is a day belonging to the month page itself (month mode).
	MonthDate DayPosition = iota
	// InDate is a day shown on a page but chronologically belonging to the
	// page before it. In-dates always precede every other cell on a page.
	InDate
	// OutDate is a day shown on a page but chronologically belonging to the
	// page after it. Out-dates always trail every other cell on a page.
	OutDate
	// RangeDate is a day inside the configured bounds (week mode).
	RangeDate
)

func (p DayPosition) String() string {
	switch p {
	case MonthDate:
		return "month"
	case InDate:
		return "in"
	case OutDate:
		return "out"
	case RangeDate:
		return "range"
	default:
		return fmt.Sprintf("DayPosition(%d)", int(p))
	}
}

// Day is a single cell of a calendar page. Days are immutable values;
// two days are equal iff their dates and positions are equal.
type Day struct {
	// Date is the cell's calendar date, always midnight UTC.
	Date time.Time
	// Position classifies the cell relative to its page.
	Position DayPosition
}

// Page is one month (month mode) or one week (week mode) of the calendar.
//
// Anchor identifies the page: the first day of the month, or the week's
// start date. Pages are immutable once generated; regenerating a page for
// the same configuration always yields an equal value.
type Page struct {
	Anchor time.Time
	Days   []Day
}

// Rows splits the page into 7-cell rows. Under OutDateNone the final row
// may hold fewer than 7 cells; every other policy produces full rows only.
func (p Page) Rows() [][]Day {
	rows := make([][]Day, 0, (len(p.Days)+6)/7)
	for i := 0; i < len(p.Days); i += 7 {
		end := i + 7
		if end > len(p.Days) {
			end = len(p.Days)
		}
		rows = append(rows, p.Days[i:end])
	}
	return rows
}

// OutDatePolicy controls how many trailing out-dates a month page carries.
type OutDatePolicy int

const (
	// OutDateEndOfRow fills out-dates only to the end of the last in-month
	// row, so month pages have 4 to 6 rows depending on alignment.
	OutDateEndOfRow OutDatePolicy = iota
	// OutDateEndOfGrid pads every month page to exactly 6 rows (42 cells).
	OutDateEndOfGrid
	// OutDateNone emits no trailing out-dates; the last row may be short.
	OutDateNone
)

func (p OutDatePolicy) String() string {
	switch p {
	case OutDateEndOfRow:
		return "end_of_row"
	case OutDateEndOfGrid:
		return "end_of_grid"
	case OutDateNone:
		return "none"
	default:
		return fmt.Sprintf("OutDatePolicy(%d)", int(p))
	}
}

// Mode selects between month pages and week pages.
type Mode int

const (
	MonthMode Mode = iota
	WeekMode
)

func (m Mode) String() string {
	switch m {
	case MonthMode:
		return "month"
	case WeekMode:
		return "week"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// InvalidRangeError reports a configuration whose start bound is after its
// end bound. No pages or indexes are ever computed from such a range.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("grid: invalid range: start %s is after end %s",
		e.Start.Format(dateLayout), e.End.Format(dateLayout))
}

// IndexOutOfRangeError reports a Page call outside [0, PageCount()). It is
// a contract violation by the caller, not a recoverable runtime condition.
type IndexOutOfRangeError struct {
	Index int
	Count int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("grid: page index %d out of range [0, %d)", e.Index, e.Count)
}

const dateLayout = "2006-01-02"

// DateUTC builds the canonical midnight-UTC representation of a date.
// All dates flowing through the grid use this form.
func DateUTC(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize truncates an arbitrary time to its midnight-UTC calendar date.
func Normalize(t time.Time) time.Time {
	return DateUTC(t.Year(), t.Month(), t.Day())
}

// DaysBetween returns the signed number of calendar days from a to b.
// Both arguments must be midnight-UTC dates. The difference is computed
// on civil day numbers, not time.Duration, so spans beyond Duration's
// ~292-year ceiling stay exact.
func DaysBetween(a, b time.Time) int {
	return civilDays(b) - civilDays(a)
}

// civilDays returns the number of days since 1970-01-01 for a proleptic
// Gregorian date (negative before the epoch).
func civilDays(t time.Time) int {
	y, m, d := t.Year(), int(t.Month()), t.Day()
	if m <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	doy := (153*((m+9)%12)+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// WeeksBetween returns the signed number of whole weeks from a to b,
// flooring toward negative infinity so that dates before the epoch land
// on negative week indexes rather than week zero.
func WeeksBetween(a, b time.Time) int {
	return floorDiv(DaysBetween(a, b), 7)
}

// MonthsBetween returns the signed number of calendar months from the
// month containing a to the month containing b, ignoring days.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// weekdayOffset returns how many days date sits after the most recent
// occurrence of first (0 when date falls on first itself).
func weekdayOffset(date time.Time, first time.Weekday) int {
	return (int(date.Weekday()) - int(first) + 7) % 7
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month normalizes to this month's last day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
