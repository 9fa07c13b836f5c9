package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/solar"
)

// SunPosition returns the apparent geocentric equatorial position of the Sun.
func SunPosition(t time.Time) Coordinate {
	α, δ := solar.ApparentEquatorial(julianDate(t))
	return Coordinate{
		RADeg:  normalizeAngle360(radToDeg(α.Rad())),
		DecDeg: radToDeg(δ.Rad()),
	}
}

// SunAltitude returns the Sun's altitude in degrees for an observer.
func SunAltitude(obs Observer, t time.Time) float64 {
	return EquatorialToHorizontal(SunPosition(t), obs, t).AltDeg
}

// MoonPosition returns the geocentric equatorial position of the Moon.
// Topocentric parallax (up to about one degree) is ignored.
func MoonPosition(t time.Time) Coordinate {
	jde := julianDate(t)
	λ, β, _ := moonposition.Position(jde)
	sε, cε := math.Sincos(nutation.MeanObliquity(jde).Rad())
	α, δ := coord.EclToEq(λ, β, sε, cε)
	return Coordinate{
		RADeg:  normalizeAngle360(radToDeg(α.Rad())),
		DecDeg: radToDeg(δ.Rad()),
	}
}

// MoonTrajectory returns the Moon's horizontal position at each instant.
func MoonTrajectory(instants []time.Time, obs Observer) []AltAz {
	out := make([]AltAz, len(instants))
	for i, t := range instants {
		out[i] = EquatorialToHorizontal(MoonPosition(t), obs, t)
	}
	return out
}

// MoonSeparation returns the angular distance in degrees between a target
// and the Moon at t.
func MoonSeparation(c Coordinate, t time.Time) float64 {
	m := MoonPosition(t)
	return AngularSeparation(c.RADeg, c.DecDeg, m.RADeg, m.DecDeg)
}

// AngularSeparation calculates the angular separation between two points on the celestial sphere.
// All coordinates in degrees. Returns separation in degrees.
func AngularSeparation(ra1, dec1, ra2, dec2 float64) float64 {
	ra1Rad := degToRad(ra1)
	dec1Rad := degToRad(dec1)
	ra2Rad := degToRad(ra2)
	dec2Rad := degToRad(dec2)

	// Haversine formula for angular separation
	dRA := ra2Rad - ra1Rad
	dDec := dec2Rad - dec1Rad

	a := math.Sin(dDec/2)*math.Sin(dDec/2) +
		math.Cos(dec1Rad)*math.Cos(dec2Rad)*math.Sin(dRA/2)*math.Sin(dRA/2)

	// Clamp to avoid numerical errors with asin
	if a > 1 {
		a = 1
	}

	return radToDeg(2 * math.Asin(math.Sqrt(a)))
}
