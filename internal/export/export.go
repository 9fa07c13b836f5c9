// Package export renders semester visibility results as JSON snapshots and
// plain-text summary tables.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/KeckObservatory/planning-tool/internal/astro"
	"github.com/KeckObservatory/planning-tool/internal/dome"
	"github.com/KeckObservatory/planning-tool/internal/target"
	"github.com/KeckObservatory/planning-tool/internal/visibility"
)

// SemesterExport is the JSON-serializable representation of one target's
// semester visibility.
type SemesterExport struct {
	GeneratedAt     time.Time    `json:"generated_at"`
	Semester        string       `json:"semester"`
	Dome            string       `json:"dome"`
	IntervalMinutes float64      `json:"interval_minutes"`
	Target          TargetExport `json:"target"`
	TotalHours      float64      `json:"total_observable_hours"`
	Days            []DayExport  `json:"days"`
}

// TargetExport is a JSON-friendly target representation.
type TargetExport struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"name,omitempty"`
	RA     string  `json:"ra"`
	Dec    string  `json:"dec"`
	RADeg  float64 `json:"ra_deg"`
	DecDeg float64 `json:"dec_deg"`
}

// DayExport is a JSON-friendly day summary.
type DayExport struct {
	Date            string              `json:"date"`
	Sunset          *time.Time          `json:"sunset,omitempty"`
	NightEnd        *time.Time          `json:"night_end,omitempty"`
	ObservableHours float64             `json:"observable_hours"`
	Blocked         map[string]int      `json:"blocked,omitempty"`
	Samples         []visibility.Sample `json:"samples,omitempty"`
}

// ExportSemester converts a semester summary to an exportable format.
// Per-sample data is included only when withSamples is set.
func ExportSemester(tgt target.Target, coord astro.Coordinate, s visibility.SemesterSummary, interval time.Duration, generatedAt time.Time, withSamples bool) *SemesterExport {
	export := &SemesterExport{
		GeneratedAt:     generatedAt,
		Semester:        s.Semester.String(),
		Dome:            string(s.Dome),
		IntervalMinutes: interval.Minutes(),
		Target: TargetExport{
			ID:     tgt.ID,
			Name:   tgt.Name,
			RA:     astro.FormatRA(coord.RADeg),
			Dec:    astro.FormatDec(coord.DecDeg),
			RADeg:  coord.RADeg,
			DecDeg: coord.DecDeg,
		},
		TotalHours: s.TotalHours(),
		Days:       make([]DayExport, 0, len(s.Days)),
	}

	for _, d := range s.Days {
		day := DayExport{
			Date:            d.Date.Format(time.DateOnly),
			ObservableHours: d.ObservableHours,
			Blocked:         blockedCounts(d.Samples),
		}
		if d.HasNight() {
			sunset, end := d.Night.Sunset, d.Night.NightEnd
			day.Sunset, day.NightEnd = &sunset, &end
		}
		if withSamples {
			day.Samples = d.Samples
		}
		export.Days = append(export.Days, day)
	}

	return export
}

// blockedCounts tallies samples per reason. Nil when nothing is blocked.
func blockedCounts(samples []visibility.Sample) map[string]int {
	var counts map[string]int
	for _, s := range samples {
		for _, r := range s.Reasons {
			if counts == nil {
				counts = make(map[string]int)
			}
			counts[r.String()]++
		}
	}
	return counts
}

// WriteJSON writes the export as indented JSON to the given writer.
func (e *SemesterExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// SummaryRow represents one row in the summary table.
type SummaryRow struct {
	Date     string
	Sunset   string
	NightEnd string
	Hours    float64
	Limit    string // dominant blocking reason, empty if none
}

// GenerateSummaryRows creates one row per day. Times are shown in loc with
// the given layout.
func GenerateSummaryRows(s visibility.SemesterSummary, loc *time.Location, layout string) []SummaryRow {
	rows := make([]SummaryRow, 0, len(s.Days))
	for _, d := range s.Days {
		row := SummaryRow{
			Date:     d.Date.Format(time.DateOnly),
			Sunset:   "-",
			NightEnd: "-",
			Hours:    d.ObservableHours,
			Limit:    dominantReason(d.Samples),
		}
		if d.HasNight() {
			row.Sunset = d.Night.Sunset.In(loc).Format(layout)
			row.NightEnd = d.Night.NightEnd.In(loc).Format(layout)
		}
		rows = append(rows, row)
	}
	return rows
}

func dominantReason(samples []visibility.Sample) string {
	counts := make(map[dome.Reason]int)
	for _, s := range samples {
		for _, r := range s.Reasons {
			counts[r]++
		}
	}

	best, bestN := "", 0
	for _, r := range []dome.Reason{dome.DeckBlocking, dome.BelowHorizon, dome.AboveTrackingLimits} {
		if counts[r] > bestN {
			best, bestN = r.String(), counts[r]
		}
	}
	return best
}

// WriteSummaryTable writes a text table to the given writer.
func WriteSummaryTable(w io.Writer, name string, s visibility.SemesterSummary, loc *time.Location, layout string) {
	rows := GenerateSummaryRows(s, loc, layout)

	fmt.Fprintf(w, "%s  %s %s\n", name, s.Semester, s.Dome)
	fmt.Fprintln(w, strings.Repeat("─", 64))

	if len(rows) == 0 {
		fmt.Fprintln(w, "No nights computed")
		return
	}

	// Header
	fmt.Fprintf(w, "%-10s  %-16s  %-16s  %6s  %s\n", "Date", "Sunset", "Night end", "Hours", "Limit")
	fmt.Fprintln(w, strings.Repeat("─", 64))

	// Rows
	for _, r := range rows {
		fmt.Fprintf(w, "%-10s  %-16s  %-16s  %6.2f  %s\n",
			r.Date,
			truncateStr(r.Sunset, 16),
			truncateStr(r.NightEnd, 16),
			r.Hours,
			r.Limit,
		)
	}

	fmt.Fprintf(w, "\nTotal: %.2f observable hours over %d nights\n", s.TotalHours(), len(rows))
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
