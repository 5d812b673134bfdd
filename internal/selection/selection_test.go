package selection

import (
	"testing"
	"time"

	"calgrid/internal/grid"
)

func d(day int) time.Time {
	return grid.DateUTC(2022, time.January, day)
}

func TestFoldClickSequence(t *testing.T) {
	var zero time.Time

	// First click anchors.
	start, end := Fold(d(10), zero, zero)
	if !start.Equal(d(10)) || !end.IsZero() {
		t.Fatalf("first click: got (%v, %v)", start, end)
	}

	// Later click closes the range.
	start, end = Fold(d(15), d(10), zero)
	if !start.Equal(d(10)) || !end.Equal(d(15)) {
		t.Fatalf("closing click: got (%v, %v)", start, end)
	}

	// Earlier click re-anchors instead of closing.
	start, end = Fold(d(5), d(10), zero)
	if !start.Equal(d(5)) || !end.IsZero() {
		t.Fatalf("re-anchor click: got (%v, %v)", start, end)
	}

	// Clicking the anchor itself commits a one-day range.
	start, end = Fold(d(10), d(10), zero)
	if !start.Equal(d(10)) || !end.Equal(d(10)) {
		t.Fatalf("anchor click: got (%v, %v)", start, end)
	}

	// Any click while ranged starts over.
	start, end = Fold(d(20), d(10), d(15))
	if !start.Equal(d(20)) || !end.IsZero() {
		t.Fatalf("reset click: got (%v, %v)", start, end)
	}
}

func TestFoldIsDeterministic(t *testing.T) {
	var zero time.Time
	s1, e1 := Fold(d(7), zero, zero)
	s2, e2 := Fold(d(7), zero, zero)
	if !s1.Equal(s2) || e1 != e2 {
		t.Fatal("identical inputs produced different outputs")
	}
}

func TestAnchorsFoldKeepsInvariant(t *testing.T) {
	var a Anchors
	clicks := []int{12, 3, 9, 9, 25, 1, 30}
	for _, c := range clicks {
		a.Fold(d(c))
		if a.End.IsZero() {
			continue
		}
		if a.Start.IsZero() {
			t.Fatal("end set without start")
		}
		if a.Start.After(a.End) {
			t.Fatalf("start %v after end %v", a.Start, a.End)
		}
	}
}

func TestBoundaryDateSelectedStrictInterior(t *testing.T) {
	start, end := d(10), d(20)
	cases := []struct {
		date time.Time
		pos  grid.DayPosition
		want bool
	}{
		{d(15), grid.InDate, true},
		{d(15), grid.OutDate, true},
		{d(10), grid.InDate, false},  // endpoint, cap-styled on its home page
		{d(20), grid.OutDate, false}, // endpoint
		{d(9), grid.InDate, false},
		{d(21), grid.OutDate, false},
		{d(15), grid.MonthDate, false}, // in-page cells use DaySelected
		{d(15), grid.RangeDate, false},
	}
	for _, c := range cases {
		if got := BoundaryDateSelected(c.date, c.pos, start, end); got != c.want {
			t.Errorf("BoundaryDateSelected(%s, %v) = %v, want %v",
				c.date.Format("2006-01-02"), c.pos, got, c.want)
		}
	}
}

func TestBoundaryDateSelectedNeedsBothAnchors(t *testing.T) {
	var zero time.Time
	if BoundaryDateSelected(d(15), grid.InDate, d(10), zero) {
		t.Fatal("anchored-only state must not highlight boundary cells")
	}
	if BoundaryDateSelected(d(15), grid.InDate, zero, zero) {
		t.Fatal("empty state must not highlight boundary cells")
	}
}

func TestDaySelected(t *testing.T) {
	var zero time.Time
	if !DaySelected(d(10), d(10), zero) {
		t.Fatal("anchored day should be selected")
	}
	if DaySelected(d(11), d(10), zero) {
		t.Fatal("non-anchor day selected in anchored state")
	}
	if !DaySelected(d(10), d(10), d(20)) || !DaySelected(d(20), d(10), d(20)) {
		t.Fatal("range endpoints should be selected inclusively")
	}
	if DaySelected(d(21), d(10), d(20)) {
		t.Fatal("date past end selected")
	}
	if DaySelected(d(5), zero, zero) {
		t.Fatal("empty state selected something")
	}
}
