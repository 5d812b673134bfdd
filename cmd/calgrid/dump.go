package main

import (
	"encoding/json"
	"io"

	"calgrid/internal/config"
	"calgrid/internal/grid"
)

// dumpDay / dumpPage / gridDump are the debug-dump JSON shapes for -dump.
type dumpDay struct {
	Date     string `json:"date"`
	Position string `json:"position"`
}

type dumpPage struct {
	Index  int       `json:"index"`
	Anchor string    `json:"anchor"`
	Days   []dumpDay `json:"days"`
}

type gridDump struct {
	Mode          string     `json:"mode"`
	Start         string     `json:"start"`
	End           string     `json:"end"`
	WeekStart     string     `json:"week_start"`
	OutDatePolicy string     `json:"out_date_policy"`
	PageCount     int        `json:"page_count"`
	Pages         []dumpPage `json:"pages"`
}

const dumpDateLayout = "2006-01-02"

// dumpGrid materializes every page of conf's calendar and writes the
// whole grid as indented JSON.
func dumpGrid(w io.Writer, conf *config.Config) error {
	gc, err := conf.GridConfig()
	if err != nil {
		return err
	}
	cal, err := grid.New(gc)
	if err != nil {
		return err
	}

	out := gridDump{
		Mode:          gc.Mode.String(),
		Start:         gc.Start.Format(dumpDateLayout),
		End:           gc.End.Format(dumpDateLayout),
		WeekStart:     gc.FirstDayOfWeek.String(),
		OutDatePolicy: gc.OutDatePolicy.String(),
		PageCount:     cal.PageCount(),
		Pages:         make([]dumpPage, 0, cal.PageCount()),
	}
	for i := 0; i < cal.PageCount(); i++ {
		page, err := cal.Page(i)
		if err != nil {
			return err
		}
		dp := dumpPage{
			Index:  i,
			Anchor: page.Anchor.Format(dumpDateLayout),
			Days:   make([]dumpDay, 0, len(page.Days)),
		}
		for _, d := range page.Days {
			dp.Days = append(dp.Days, dumpDay{
				Date:     d.Date.Format(dumpDateLayout),
				Position: d.Position.String(),
			})
		}
		out.Pages = append(out.Pages, dp)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
