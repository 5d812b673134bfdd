package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"calgrid/internal/config"
)

func TestDumpGrid(t *testing.T) {
	conf := config.DefaultConfig()
	conf.Mode = "week"
	conf.Start = "2022-01-05"
	conf.End = "2022-01-05"
	conf.WeekStart = "monday"

	var buf bytes.Buffer
	if err := dumpGrid(&buf, conf); err != nil {
		t.Fatalf("dumpGrid: %v", err)
	}

	var out gridDump
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("dump is not valid JSON: %v", err)
	}
	if out.PageCount != 1 || len(out.Pages) != 1 {
		t.Fatalf("expected a single page, got count=%d pages=%d", out.PageCount, len(out.Pages))
	}
	page := out.Pages[0]
	if page.Anchor != "2022-01-03" {
		t.Fatalf("anchor: %q", page.Anchor)
	}
	want := []string{"in", "in", "range", "out", "out", "out", "out"}
	if len(page.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(page.Days))
	}
	for i, d := range page.Days {
		if d.Position != want[i] {
			t.Fatalf("day %d: position %q, want %q", i, d.Position, want[i])
		}
	}
}

func TestDumpGridRejectsInvalidRange(t *testing.T) {
	conf := config.DefaultConfig()
	conf.Start = "2022-02-01"
	conf.End = "2022-01-01"

	var buf bytes.Buffer
	if err := dumpGrid(&buf, conf); err == nil {
		t.Fatal("expected error for inverted range")
	}
}
