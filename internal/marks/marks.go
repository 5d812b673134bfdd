// Package marks expands recurring marked-date rules (RRULE strings, e.g.
// holidays or paydays) into the concrete dates falling inside the
// configured calendar bounds.
package marks

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	"calgrid/internal/grid"
	appLog "calgrid/internal/log"
)

const defaultMaxDatesPerRule = 1000

// Rule is one recurring mark as configured by the host.
type Rule struct {
	// ID labels the rule for logging and styling.
	ID string
	// RRule is an RFC 5545 recurrence string, e.g. "FREQ=WEEKLY;BYDAY=FR".
	RRule string
	// DTStart anchors the recurrence; when zero, the calendar's start
	// bound is used.
	DTStart time.Time
}

// ExpandConfig bounds the expansion.
type ExpandConfig struct {
	// RangeStart / RangeEnd are the inclusive date window, normally the
	// calendar's configured bounds.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxDatesPerRule caps each rule's expansion as a safety net against
	// runaway recurrences. Zero means defaultMaxDatesPerRule.
	MaxDatesPerRule int
}

// Set is the expanded result: marked dates keyed by "2006-01-02", each
// mapped to the IDs of the rules that produced it.
type Set map[string][]string

// Contains reports whether date is marked by any rule.
func (s Set) Contains(date time.Time) bool {
	_, ok := s[grid.Normalize(date).Format("2006-01-02")]
	return ok
}

// RuleIDs returns the rule IDs that marked date, or nil.
func (s Set) RuleIDs(date time.Time) []string {
	return s[grid.Normalize(date).Format("2006-01-02")]
}

// Expand evaluates all rules inside cfg's window. Rules that fail to
// parse are logged and skipped; a bad rule never takes the rest down.
func Expand(rules []Rule, cfg ExpandConfig) (Set, error) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return nil, errors.New("marks: RangeEnd is before RangeStart")
	}
	if cfg.MaxDatesPerRule <= 0 {
		cfg.MaxDatesPerRule = defaultMaxDatesPerRule
	}

	out := make(Set)
	for _, rule := range rules {
		dates, err := expandRule(rule, cfg)
		if err != nil {
			appLog.Error("marks: skipping unparsable rule", err, "id", rule.ID, "rrule", rule.RRule)
			continue
		}
		for _, d := range dates {
			key := d.Format("2006-01-02")
			out[key] = append(out[key], rule.ID)
		}
	}
	return out, nil
}

func expandRule(rule Rule, cfg ExpandConfig) ([]time.Time, error) {
	r, err := rrule.StrToRRule(rule.RRule)
	if err != nil {
		return nil, err
	}

	dtstart := rule.DTStart
	if dtstart.IsZero() {
		dtstart = cfg.RangeStart
	}
	r.DTStart(grid.Normalize(dtstart))

	var set rrule.Set
	set.RRule(r)

	occ := set.Between(cfg.RangeStart, cfg.RangeEnd, true)
	if len(occ) > cfg.MaxDatesPerRule {
		occ = occ[:cfg.MaxDatesPerRule]
		appLog.Error("marks: rule truncated at cap", errors.New("max dates reached"),
			"id", rule.ID, "cap", cfg.MaxDatesPerRule)
	}

	dates := make([]time.Time, 0, len(occ))
	for _, t := range occ {
		dates = append(dates, grid.Normalize(t))
	}
	return dates, nil
}
