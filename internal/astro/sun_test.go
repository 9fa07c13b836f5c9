package astro

import (
	"math"
	"testing"
	"time"
)

func TestSunPosition(t *testing.T) {
	tests := []struct {
		name   string
		time   time.Time
		wantRA float64
		wantDe float64
	}{
		{"March equinox 2024", time.Date(2024, 3, 20, 3, 6, 0, 0, time.UTC), 0, 0},
		{"June solstice 2024", time.Date(2024, 6, 20, 20, 51, 0, 0, time.UTC), 90, 23.44},
		{"September equinox 2024", time.Date(2024, 9, 22, 12, 44, 0, 0, time.UTC), 180, 0},
		{"December solstice 2024", time.Date(2024, 12, 21, 9, 21, 0, 0, time.UTC), 270, -23.44},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := SunPosition(tt.time)

			dRA := math.Abs(pos.RADeg - tt.wantRA)
			if dRA > 180 {
				dRA = 360 - dRA
			}
			if dRA > 0.1 {
				t.Errorf("RA = %v, want ~%v", pos.RADeg, tt.wantRA)
			}
			if math.Abs(pos.DecDeg-tt.wantDe) > 0.1 {
				t.Errorf("Dec = %v, want ~%v", pos.DecDeg, tt.wantDe)
			}
		})
	}
}

func TestSunAltitudeDayAndNight(t *testing.T) {
	// 12:00 and 00:00 HST.
	noon := time.Date(2024, 6, 21, 22, 0, 0, 0, time.UTC)
	midnight := time.Date(2024, 6, 21, 10, 0, 0, 0, time.UTC)

	if alt := SunAltitude(keck, noon); alt < 60 {
		t.Errorf("local noon altitude = %v, want high in the sky", alt)
	}
	if alt := SunAltitude(keck, midnight); alt > -30 {
		t.Errorf("local midnight altitude = %v, want well below the horizon", alt)
	}
}

func TestMoonPosition(t *testing.T) {
	// Full moon 2024-01-25 17:54 UTC: Moon opposite the Sun.
	full := time.Date(2024, 1, 25, 17, 54, 0, 0, time.UTC)
	sun := SunPosition(full)
	moon := MoonPosition(full)

	if sep := AngularSeparation(sun.RADeg, sun.DecDeg, moon.RADeg, moon.DecDeg); sep < 170 {
		t.Errorf("Sun-Moon separation at full moon = %v, want ~180", sep)
	}
	if math.Abs(moon.DecDeg) > 29 {
		t.Errorf("Moon dec = %v, outside the lunar range", moon.DecDeg)
	}
	if moon.RADeg < 0 || moon.RADeg >= 360 {
		t.Errorf("Moon RA out of range: %v", moon.RADeg)
	}

	if sep := MoonSeparation(moon, full); sep > 1e-6 {
		t.Errorf("MoonSeparation of the Moon itself = %v", sep)
	}
}

func TestMoonTrajectory(t *testing.T) {
	start := time.Date(2024, 1, 25, 6, 0, 0, 0, time.UTC)
	instants := []time.Time{start, start.Add(time.Hour)}

	traj := MoonTrajectory(instants, keck)
	if len(traj) != 2 {
		t.Fatalf("len = %d, want 2", len(traj))
	}
	for i, at := range instants {
		want := EquatorialToHorizontal(MoonPosition(at), keck, at)
		if traj[i] != want {
			t.Errorf("traj[%d] = %+v, want %+v", i, traj[i], want)
		}
	}
}

func TestAngularSeparation(t *testing.T) {
	tests := []struct {
		name                   string
		ra1, dec1, ra2, dec2   float64
		want                   float64
	}{
		{"same point", 120, 30, 120, 30, 0},
		{"quarter of the equator", 0, 0, 90, 0, 90},
		{"pole to pole", 0, 90, 0, -90, 180},
		{"across RA wrap", 359, 0, 1, 0, 2},
		{"pole to equator", 45, 90, 200, 0, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngularSeparation(tt.ra1, tt.dec1, tt.ra2, tt.dec2)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("AngularSeparation() = %v, want %v", got, tt.want)
			}
		})
	}
}
