// Package visibility aggregates per-instant observability of a target into
// nightly and semester-long summaries.
package visibility

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/KeckObservatory/planning-tool/internal/astro"
	"github.com/KeckObservatory/planning-tool/internal/dome"
	"github.com/KeckObservatory/planning-tool/internal/logging"
	"github.com/KeckObservatory/planning-tool/internal/semester"
)

// DefaultInterval is the sampling step used when none is configured.
const DefaultInterval = 5 * time.Minute

// Sample is the observability of a target at one instant.
type Sample struct {
	Time       time.Time     `json:"time"`
	AzDeg      float64       `json:"az"`
	AltDeg     float64       `json:"alt"`
	AirMass    float64       `json:"airmass"`
	Observable bool          `json:"observable"`
	Reasons    []dome.Reason `json:"reasons,omitempty"`
	MoonSepDeg float64       `json:"moon_sep"`
}

// DaySummary is one calendar date's result. Night is zero and Samples is
// empty when the date has no astronomical night.
type DaySummary struct {
	Date            time.Time   `json:"date"`
	Night           astro.Night `json:"night"`
	Samples         []Sample    `json:"samples"`
	ObservableHours float64     `json:"observable_hours"`
}

// HasNight reports whether any night window was found for the day.
func (d DaySummary) HasNight() bool {
	return !d.Night.Sunset.IsZero()
}

// SemesterSummary is the per-day result over a whole semester.
type SemesterSummary struct {
	Semester semester.ID  `json:"semester"`
	Dome     dome.Dome    `json:"dome,omitempty"`
	Days     []DaySummary `json:"days"`
}

// TotalHours sums observable hours across all days.
func (s SemesterSummary) TotalHours() float64 {
	var total float64
	for _, d := range s.Days {
		total += d.ObservableHours
	}
	return total
}

// ObservableHours returns the number of observable samples times the
// interval, in hours.
func ObservableHours(samples []Sample, interval time.Duration) float64 {
	n := 0
	for _, s := range samples {
		if s.Observable {
			n++
		}
	}
	return float64(n) * interval.Minutes() / 60
}

// Day computes the observability of coord over the night following date.
// A date without astronomical night yields an empty summary and no error.
func Day(coord astro.Coordinate, date time.Time, obs astro.Observer, geo dome.Geometry, interval time.Duration) (DaySummary, error) {
	y, m, d := date.Date()
	summary := DaySummary{Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}

	night, err := astro.NightBounds(obs, date)
	if errors.Is(err, astro.ErrNoNight) {
		return summary, nil
	}
	if err != nil {
		return summary, err
	}
	summary.Night = night

	instants := slices.Collect(astro.SampleInstants(night.Sunset, night.NightEnd, interval))
	for i, pos := range astro.Trajectory(coord, instants, obs) {
		t := instants[i]
		verdict := dome.Evaluate(pos, geo)
		airmass, _ := astro.AirMass(pos.AltDeg)

		summary.Samples = append(summary.Samples, Sample{
			Time:       t,
			AzDeg:      pos.AzDeg,
			AltDeg:     pos.AltDeg,
			AirMass:    airmass,
			Observable: verdict.Observable,
			Reasons:    verdict.Reasons,
			MoonSepDeg: astro.MoonSeparation(coord, t),
		})
	}
	summary.ObservableHours = ObservableHours(summary.Samples, interval)
	return summary, nil
}

// Options tunes a semester computation.
type Options struct {
	// Dome labels the summary.
	Dome dome.Dome
	// Workers bounds concurrent day computations. Zero uses GOMAXPROCS.
	Workers int
	// Logger receives progress messages. Nil discards them.
	Logger *logging.Logger
}

type dayResult struct {
	summary DaySummary
	err     error
}

// Semester computes Day for every date of semesterText. An invalid
// identifier yields an empty summary. Days are computed concurrently and
// returned in date order. If ctx is cancelled, dispatch stops and ctx's
// error is returned with whatever days completed.
func Semester(ctx context.Context, coord astro.Coordinate, semesterText string, obs astro.Observer, geo dome.Geometry, interval time.Duration, opts Options) (SemesterSummary, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	id, err := semester.Parse(semesterText)
	if err != nil {
		log.Debug("skipping visibility: %v", err)
		return SemesterSummary{Dome: opts.Dome}, nil
	}

	dates := id.Dates()
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(dates))

	start := time.Now()
	jobs := make(chan time.Time)
	results := make(chan dayResult, len(dates))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for date := range jobs {
				s, err := Day(coord, date, obs, geo, interval)
				results <- dayResult{summary: s, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, date := range dates {
			select {
			case jobs <- date:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	summary := SemesterSummary{Semester: id, Dome: opts.Dome}
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		summary.Days = append(summary.Days, r.summary)
	}

	slices.SortFunc(summary.Days, func(a, b DaySummary) int {
		return a.Date.Compare(b.Date)
	})

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	if firstErr != nil {
		return summary, firstErr
	}

	log.Info("computed %s %s: %d days, %.1f observable hours in %s",
		id, opts.Dome, len(summary.Days), summary.TotalHours(), time.Since(start).Round(time.Millisecond))
	return summary, nil
}
