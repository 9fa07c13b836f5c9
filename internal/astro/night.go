package astro

import (
	"errors"
	"iter"
	"time"
)

// Sun altitude thresholds in degrees.
const (
	// SunsetAltitude accounts for refraction and the solar semi-diameter.
	SunsetAltitude = -0.833

	// AstronomicalTwilightAltitude bounds astronomical night.
	AstronomicalTwilightAltitude = -18.0
)

const (
	// crossingScanStep is the coarse grid used to bracket a threshold crossing.
	crossingScanStep = 10 * time.Minute

	// crossingResolution is when bisection stops refining a crossing.
	crossingResolution = time.Second
)

// ErrNoNight is returned when the Sun does not set or does not reach
// astronomical darkness during the night following a date.
var ErrNoNight = errors.New("no astronomical night for date")

// Night holds the solar event instants bounding one observing night.
//
// DawnStart and NightEnd are the same instant: the morning crossing of
// AstronomicalTwilightAltitude, where astronomical dawn starts and the
// night ends.
type Night struct {
	Sunset    time.Time `json:"sunset"`
	DuskEnd   time.Time `json:"dusk_end"`
	DawnStart time.Time `json:"dawn_start"`
	NightEnd  time.Time `json:"night_end"`
}

// Duration returns the length of the sampling window, sunset to night end.
func (n Night) Duration() time.Duration {
	return n.NightEnd.Sub(n.Sunset)
}

// NightBounds computes the night following the civil date of date (its
// year, month and day; the clock time and location are ignored) at the
// observer. The search runs from local mean noon of that date to local mean
// noon of the next day.
func NightBounds(obs Observer, date time.Time) (Night, error) {
	y, m, d := date.Date()
	offset := time.Duration(obs.LonDeg / 15 * float64(time.Hour))
	noon := time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Add(-offset)
	limit := noon.Add(24 * time.Hour)

	alt := func(t time.Time) float64 { return SunAltitude(obs, t) }

	sunset, ok := findCrossing(alt, noon, limit, SunsetAltitude, false)
	if !ok {
		return Night{}, ErrNoNight
	}
	duskEnd, ok := findCrossing(alt, sunset, limit, AstronomicalTwilightAltitude, false)
	if !ok {
		return Night{}, ErrNoNight
	}
	dawn, ok := findCrossing(alt, duskEnd, limit, AstronomicalTwilightAltitude, true)
	if !ok {
		return Night{}, ErrNoNight
	}

	return Night{
		Sunset:    sunset,
		DuskEnd:   duskEnd,
		DawnStart: dawn,
		NightEnd:  dawn,
	}, nil
}

// findCrossing scans [from, to) for the first instant where f crosses
// threshold in the requested direction and refines it by bisection.
func findCrossing(f func(time.Time) float64, from, to time.Time, threshold float64, rising bool) (time.Time, bool) {
	prevT := from
	prev := f(prevT)

	for prevT.Before(to) {
		currT := prevT.Add(crossingScanStep)
		curr := f(currT)

		crossed := prev >= threshold && curr < threshold
		if rising {
			crossed = prev < threshold && curr >= threshold
		}
		if crossed {
			return bisectCrossing(f, prevT, currT, threshold, rising), true
		}

		prevT, prev = currT, curr
	}
	return time.Time{}, false
}

// bisectCrossing narrows a bracketed crossing to crossingResolution.
func bisectCrossing(f func(time.Time) float64, lo, hi time.Time, threshold float64, rising bool) time.Time {
	for hi.Sub(lo) > crossingResolution {
		mid := lo.Add(hi.Sub(lo) / 2)
		above := f(mid) >= threshold
		// For a setting body the crossing lies after every point still above.
		if above != rising {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi.Truncate(crossingResolution)
}

// SampleInstants returns the instants from start to end inclusive, spaced
// by interval and aligned to the interval grid. The first instant is start
// rounded up to the grid. The sequence is lazy and may be ranged over more
// than once. A non-positive interval or an end before start yields nothing.
func SampleInstants(start, end time.Time, interval time.Duration) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if interval <= 0 || end.Before(start) {
			return
		}
		t := start.Truncate(interval)
		if t.Before(start) {
			t = t.Add(interval)
		}
		for ; !t.After(end); t = t.Add(interval) {
			if !yield(t) {
				return
			}
		}
	}
}
