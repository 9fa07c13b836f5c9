package astro

import (
	"errors"
	"math"
	"slices"
	"testing"
	"time"
)

func TestNightBounds_Keck(t *testing.T) {
	hst := time.FixedZone("HST", -10*3600)

	for _, date := range []time.Time{
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC),
	} {
		t.Run(date.Format("2006-01-02"), func(t *testing.T) {
			n, err := NightBounds(keck, date)
			if err != nil {
				t.Fatalf("NightBounds: %v", err)
			}

			if !(n.Sunset.Before(n.DuskEnd) && n.DuskEnd.Before(n.NightEnd)) {
				t.Errorf("events out of order: %+v", n)
			}
			if !n.DawnStart.Equal(n.NightEnd) {
				t.Errorf("DawnStart %v != NightEnd %v", n.DawnStart, n.NightEnd)
			}

			if d := n.Duration(); d < 9*time.Hour || d > 13*time.Hour {
				t.Errorf("night length = %v, want 9-13h", d)
			}

			// Sunset falls on the evening of the requested civil date in Hawaii.
			if y, m, d := n.Sunset.In(hst).Date(); y != date.Year() || m != date.Month() || d != date.Day() {
				t.Errorf("sunset %v is not on %s HST", n.Sunset.In(hst), date.Format("2006-01-02"))
			}

			if alt := SunAltitude(keck, n.Sunset); math.Abs(alt-SunsetAltitude) > 0.02 {
				t.Errorf("sun altitude at sunset = %v", alt)
			}
			if alt := SunAltitude(keck, n.DuskEnd); math.Abs(alt-AstronomicalTwilightAltitude) > 0.02 {
				t.Errorf("sun altitude at dusk end = %v", alt)
			}
			if alt := SunAltitude(keck, n.NightEnd); math.Abs(alt-AstronomicalTwilightAltitude) > 0.02 {
				t.Errorf("sun altitude at night end = %v", alt)
			}
		})
	}
}

func TestNightBounds_WinterNightsAreLonger(t *testing.T) {
	summer, err := NightBounds(keck, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	winter, err := NightBounds(keck, time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if winter.Duration() <= summer.Duration() {
		t.Errorf("winter %v should be longer than summer %v", winter.Duration(), summer.Duration())
	}
}

func TestNightBounds_NoAstronomicalNight(t *testing.T) {
	tests := []struct {
		name string
		obs  Observer
	}{
		{"midnight sun", Observer{LatDeg: 78.2, LonDeg: 15.6}},
		{"white night", Observer{LatDeg: 60, LonDeg: 10}},
	}

	date := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NightBounds(tt.obs, date); !errors.Is(err, ErrNoNight) {
				t.Errorf("err = %v, want ErrNoNight", err)
			}
		})
	}
}

func TestSampleInstants(t *testing.T) {
	base := time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		interval time.Duration
		want     []time.Time
	}{
		{"rounds start up to grid", at(3), at(30), 10 * time.Minute, []time.Time{at(10), at(20), at(30)}},
		{"start on grid is kept", at(0), at(25), 10 * time.Minute, []time.Time{at(0), at(10), at(20)}},
		{"single instant", at(5), at(5), 5 * time.Minute, []time.Time{at(5)}},
		{"nothing on grid inside", at(1), at(4), 5 * time.Minute, nil},
		{"zero interval", at(0), at(30), 0, nil},
		{"negative interval", at(0), at(30), -time.Minute, nil},
		{"end before start", at(30), at(0), 5 * time.Minute, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Collect(SampleInstants(tt.start, tt.end, tt.interval))
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSampleInstants_Restartable(t *testing.T) {
	start := time.Date(2024, 3, 11, 4, 41, 17, 0, time.UTC)
	seq := SampleInstants(start, start.Add(10*time.Hour), 5*time.Minute)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if len(first) != 120 || !slices.Equal(first, second) {
		t.Errorf("first pass %d instants, second pass %d", len(first), len(second))
	}

	// Early break stops the sequence.
	n := 0
	for range seq {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("iterated %d, want 3", n)
	}
}
