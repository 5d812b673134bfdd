// Package selection implements continuous date-range selection: folding
// clicks into start/end anchors and deciding whether boundary cells
// (in-dates/out-dates rendered on a neighboring page) fall inside the
// active range so a highlight can span page seams unbroken.
package selection

import (
	"time"

	"calgrid/internal/grid"
)

// Anchors is the current selection state. Zero time.Time values mean
// "unset"; End set implies Start set and Start <= End.
type Anchors struct {
	Start time.Time `json:"start,omitzero"`
	End   time.Time `json:"end,omitzero"`
}

// IsEmpty reports whether no anchor is set.
func (a Anchors) IsEmpty() bool { return a.Start.IsZero() }

// IsRanged reports whether both anchors are set.
func (a Anchors) IsRanged() bool { return !a.End.IsZero() }

// Fold applies one click to the current anchors and returns the new pair.
// It is a pure function realizing "click start, click end, click again to
// restart":
//
//   - no anchors: the click becomes the start anchor
//   - start only, click before it: re-anchor on the clicked date
//   - start only, click on it: commit a one-day range
//   - start only, click after it: close the range at the clicked date
//   - both set: any click resets to a fresh start anchor
func Fold(clicked, start, end time.Time) (time.Time, time.Time) {
	clicked = grid.Normalize(clicked)
	var zero time.Time

	switch {
	case start.IsZero():
		return clicked, zero
	case end.IsZero():
		if clicked.Before(start) {
			return clicked, zero
		}
		return start, clicked
	default:
		return clicked, zero
	}
}

// Fold folds one click into the anchors in place.
func (a *Anchors) Fold(clicked time.Time) {
	a.Start, a.End = Fold(clicked, a.Start, a.End)
}

// Clear drops both anchors.
func (a *Anchors) Clear() { *a = Anchors{} }

// DaySelected reports whether a page's own day (MonthDate/RangeDate cell)
// lies inside the inclusive [start, end] range. With only a start anchor
// set, just that day matches.
func DaySelected(date, start, end time.Time) bool {
	if start.IsZero() {
		return false
	}
	if end.IsZero() {
		return date.Equal(start)
	}
	return !date.Before(start) && !date.After(end)
}

// BoundaryDateSelected reports whether a boundary cell — one tagged InDate
// or OutDate, so rendered adjoining a page its date does not belong to —
// falls inside the active range. The comparison is strictly exclusive:
// the endpoints themselves get cap styling on their home pages and are
// never painted through a boundary cell.
func BoundaryDateSelected(date time.Time, pos grid.DayPosition, start, end time.Time) bool {
	if pos != grid.InDate && pos != grid.OutDate {
		return false
	}
	if start.IsZero() || end.IsZero() {
		return false
	}
	return date.After(start) && date.Before(end)
}
