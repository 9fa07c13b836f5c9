package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/KeckObservatory/planning-tool/internal/astro"
	"github.com/KeckObservatory/planning-tool/internal/dome"
	"github.com/KeckObservatory/planning-tool/internal/visibility"
)

// maxNightHours scales the per-day hours bar.
const maxNightHours = 13.0

const hoursBarWidth = 26

// RenderHoursBar renders observable hours as a fixed-width bar.
// Format: [█████░░░░░]
func RenderHoursBar(hours, maxHours float64, width int) string {
	if width <= 0 {
		return "[]"
	}
	ratio := 0.0
	if maxHours > 0 {
		ratio = hours / maxHours
	}
	ratio = math.Max(0, math.Min(1, ratio))
	filled := int(math.Round(ratio * float64(width)))

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(dome.ObservableColor))
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	return "[" + barStyle.Render(strings.Repeat("█", filled)) + emptyStyle.Render(strings.Repeat("░", width-filled)) + "]"
}

// RenderSemesterList renders one line per day, scrolled so selected is
// visible within height lines.
//
//	2026-08-01  [██████████░░░░░░]   6.25 h  18:58 → 05:02  Below Horizon
func RenderSemesterList(s visibility.SemesterSummary, selected, height int, loc *time.Location, layout string) string {
	if len(s.Days) == 0 {
		return dimStyle.Render("  No nights in semester")
	}

	first := 0
	if selected >= height {
		first = selected - height + 1
	}
	last := min(first+height, len(s.Days))

	selStyle := lipgloss.NewStyle().Background(lipgloss.Color("236")).Bold(true)

	var lines []string
	for i := first; i < last; i++ {
		d := s.Days[i]

		var window string
		if d.HasNight() {
			window = fmt.Sprintf("%s → %s", d.Night.Sunset.In(loc).Format(layout), d.Night.NightEnd.In(loc).Format(layout))
		} else {
			window = "no night"
		}

		line := fmt.Sprintf("%s  %s  %5.2f h  %s", d.Date.Format(time.DateOnly),
			RenderHoursBar(d.ObservableHours, maxNightHours, hoursBarWidth), d.ObservableHours, window)
		if r, ok := dominantReason(d.Samples); ok {
			line += "  " + lipgloss.NewStyle().Foreground(lipgloss.Color(r.Color())).Render(r.String())
		}

		if i == selected {
			lines = append(lines, selStyle.Render("▶ "+line))
		} else {
			lines = append(lines, "  "+line)
		}
	}
	return strings.Join(lines, "\n")
}

// RenderNightPanel renders one night: event times, a colored sample strip,
// the Moon, and the legend. now is the current location marker, if shown.
func RenderNightPanel(d visibility.DaySummary, obs astro.Observer, now *astro.AltAz, loc *time.Location, layout string, width int) string {
	var b strings.Builder

	b.WriteString(labelStyle.Render("  Night of " + d.Date.Format(time.DateOnly)))
	b.WriteString("\n")
	if !d.HasNight() {
		b.WriteString(dimStyle.Render("  No astronomical night"))
		return b.String()
	}

	n := d.Night
	fmt.Fprintf(&b, "  Sunset %s   Dusk %s   Dawn %s   (%s)\n",
		n.Sunset.In(loc).Format(layout), n.DuskEnd.In(loc).Format(layout),
		n.DawnStart.In(loc).Format(layout), loc)
	fmt.Fprintf(&b, "  Observable %.2f h of %.1f h\n\n", d.ObservableHours, n.Duration().Hours())

	b.WriteString(RenderSampleStrip(d.Samples, width))
	b.WriteString("\n\n")

	if peak, ok := peakSample(d.Samples); ok {
		am := "-"
		if v, ok := astro.AirMass(peak.AltDeg); ok {
			am = fmt.Sprintf("%.2f", v)
		}
		fmt.Fprintf(&b, "  Peak %s @ %.1f° az %.1f°  airmass %s\n",
			peak.Time.In(loc).Format(layout), peak.AltDeg, peak.AzDeg, am)
	}

	if len(d.Samples) > 0 {
		b.WriteString("  " + RenderMoon(d.Samples, obs))
		b.WriteString("\n")
	}

	if now != nil {
		fmt.Fprintf(&b, "  Now %.1f° az %.1f°\n", now.AltDeg, now.AzDeg)
	}

	b.WriteString("\n  " + RenderLegend())
	return b.String()
}

// RenderSampleStrip draws one cell per sample colored by its verdict,
// wrapped at width.
func RenderSampleStrip(samples []visibility.Sample, width int) string {
	if len(samples) == 0 {
		return dimStyle.Render("  No samples")
	}
	width = max(width, 1)

	var rows []string
	var row strings.Builder
	for i, s := range samples {
		v := dome.Verdict{Observable: s.Observable, Reasons: s.Reasons}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(v.Color()))
		row.WriteString(style.Render("█"))
		if (i+1)%width == 0 {
			rows = append(rows, "  "+row.String())
			row.Reset()
		}
	}
	if row.Len() > 0 {
		rows = append(rows, "  "+row.String())
	}
	return strings.Join(rows, "\n")
}

// RenderMoon summarizes the Moon over the sampled instants.
func RenderMoon(samples []visibility.Sample, obs astro.Observer) string {
	instants := make([]time.Time, len(samples))
	minSep := math.Inf(1)
	for i, s := range samples {
		instants[i] = s.Time
		minSep = math.Min(minSep, s.MoonSepDeg)
	}

	maxAlt := math.Inf(-1)
	for _, p := range astro.MoonTrajectory(instants, obs) {
		maxAlt = math.Max(maxAlt, p.AltDeg)
	}

	if maxAlt <= 0 {
		return dimStyle.Render(fmt.Sprintf("Moon down all night, separation ≥ %.0f°", minSep))
	}
	return dimStyle.Render(fmt.Sprintf("Moon up to %.0f°, closest %.0f°", maxAlt, minSep))
}

// RenderLegend renders the verdict colors.
func RenderLegend() string {
	item := func(color, label string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█") + " " + label
	}
	parts := []string{item(dome.ObservableColor, "Observable")}
	for _, r := range []dome.Reason{dome.DeckBlocking, dome.BelowHorizon, dome.AboveTrackingLimits} {
		parts = append(parts, item(r.Color(), r.String()))
	}
	return strings.Join(parts, "   ")
}

// dominantReason returns the most frequent blocking reason in samples.
func dominantReason(samples []visibility.Sample) (dome.Reason, bool) {
	var counts [3]int
	for _, s := range samples {
		for _, r := range s.Reasons {
			if int(r) < len(counts) {
				counts[r]++
			}
		}
	}

	best, bestN := dome.Reason(0), 0
	for r, n := range counts {
		if n > bestN {
			best, bestN = dome.Reason(r), n
		}
	}
	return best, bestN > 0
}

func peakSample(samples []visibility.Sample) (visibility.Sample, bool) {
	if len(samples) == 0 {
		return visibility.Sample{}, false
	}
	peak := samples[0]
	for _, s := range samples[1:] {
		if s.AltDeg > peak.AltDeg {
			peak = s
		}
	}
	return peak, true
}
