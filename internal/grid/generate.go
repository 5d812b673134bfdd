package grid

import "time"

// monthGridCells is the cell count of a fully padded 6-row month page.
const monthGridCells = 42

// MonthPage generates the page for the month containing anchor.
//
// Cells are emitted in calendar order: leading in-dates (days of the
// previous month sharing the first row), one MonthDate per day of the
// month, then trailing out-dates as the policy demands. Generation is
// pure; identical inputs always produce an equal Page.
func MonthPage(anchor time.Time, firstDayOfWeek time.Weekday, policy OutDatePolicy) Page {
	first := DateUTC(anchor.Year(), anchor.Month(), 1)
	lead := weekdayOffset(first, firstDayOfWeek)
	length := daysInMonth(first.Year(), first.Month())

	days := make([]Day, 0, monthGridCells)
	for i := lead; i > 0; i-- {
		days = append(days, Day{Date: first.AddDate(0, 0, -i), Position: InDate})
	}
	for i := 0; i < length; i++ {
		days = append(days, Day{Date: first.AddDate(0, 0, i), Position: MonthDate})
	}

	trail := 0
	switch policy {
	case OutDateEndOfRow:
		trail = (7 - len(days)%7) % 7
	case OutDateEndOfGrid:
		trail = monthGridCells - len(days)
	case OutDateNone:
		trail = 0
	}
	next := first.AddDate(0, 1, 0)
	for i := 0; i < trail; i++ {
		days = append(days, Day{Date: next.AddDate(0, 0, i), Position: OutDate})
	}

	return Page{Anchor: first, Days: days}
}

// WeekPage generates the 7-cell page whose week starts at anchor.
//
// anchor must lie on a week boundary of the adjusted range; cells before
// rangeStart are in-dates, cells after rangeEnd are out-dates, everything
// in between is a RangeDate. Week pages never pad beyond their single row.
func WeekPage(anchor, rangeStart, rangeEnd time.Time) Page {
	days := make([]Day, 0, 7)
	for i := 0; i < 7; i++ {
		date := anchor.AddDate(0, 0, i)
		pos := RangeDate
		switch {
		case date.Before(rangeStart):
			pos = InDate
		case date.After(rangeEnd):
			pos = OutDate
		}
		days = append(days, Day{Date: date, Position: pos})
	}
	return Page{Anchor: anchor, Days: days}
}

// AdjustWeekRange snaps [start, end] outward to full week boundaries under
// firstDayOfWeek. The adjusted start is the arithmetic origin for all
// week-mode index math.
func AdjustWeekRange(start, end time.Time, firstDayOfWeek time.Weekday) (time.Time, time.Time) {
	adjStart := start.AddDate(0, 0, -weekdayOffset(start, firstDayOfWeek))
	adjEnd := end.AddDate(0, 0, 6-weekdayOffset(end, firstDayOfWeek))
	return adjStart, adjEnd
}
