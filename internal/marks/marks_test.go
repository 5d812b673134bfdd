package marks

import (
	"testing"
	"time"

	"calgrid/internal/grid"
)

func TestExpandWeeklyRule(t *testing.T) {
	set, err := Expand([]Rule{
		{ID: "friday", RRule: "FREQ=WEEKLY;BYDAY=FR"},
	}, ExpandConfig{
		RangeStart: grid.DateUTC(2022, time.January, 1),
		RangeEnd:   grid.DateUTC(2022, time.January, 31),
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	fridays := []int{7, 14, 21, 28}
	for _, day := range fridays {
		if !set.Contains(grid.DateUTC(2022, time.January, day)) {
			t.Errorf("expected 2022-01-%02d marked", day)
		}
	}
	if set.Contains(grid.DateUTC(2022, time.January, 10)) {
		t.Error("Monday 2022-01-10 should not be marked")
	}
	if ids := set.RuleIDs(grid.DateUTC(2022, time.January, 7)); len(ids) != 1 || ids[0] != "friday" {
		t.Errorf("expected rule id [friday], got %v", ids)
	}
}

func TestExpandSkipsBadRule(t *testing.T) {
	set, err := Expand([]Rule{
		{ID: "broken", RRule: "FREQ=NOPE"},
		{ID: "jan15", RRule: "FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=15"},
	}, ExpandConfig{
		RangeStart: grid.DateUTC(2022, time.January, 1),
		RangeEnd:   grid.DateUTC(2022, time.December, 31),
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if !set.Contains(grid.DateUTC(2022, time.January, 15)) {
		t.Error("valid rule should survive a broken sibling")
	}
}

func TestExpandRejectsInvertedWindow(t *testing.T) {
	_, err := Expand(nil, ExpandConfig{
		RangeStart: grid.DateUTC(2022, time.February, 1),
		RangeEnd:   grid.DateUTC(2022, time.January, 1),
	})
	if err == nil {
		t.Fatal("expected error for inverted window")
	}
}
