// Package astro provides astronomical coordinate transformations and sky math.
package astro

import (
	"errors"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
)

// Coordinate is an equatorial (RA/Dec) position in decimal degrees.
type Coordinate struct {
	RADeg  float64 `json:"ra_deg"`  // Right Ascension in degrees [0, 360)
	DecDeg float64 `json:"dec_deg"` // Declination in degrees [-90, +90]
}

// AltAz is an observer-local horizontal position.
type AltAz struct {
	AzDeg  float64 `json:"az"`  // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
	AltDeg float64 `json:"alt"` // Altitude in degrees (0=horizon, 90=zenith)
}

// Observer represents a ground-based observer location.
type Observer struct {
	LatDeg     float64 // Latitude in degrees (north positive)
	LonDeg     float64 // Longitude in degrees (east positive)
	ElevationM float64 // Height above sea level in meters
	Name       string  // Optional name for the site
}

// Errors for coordinate construction.
var (
	ErrInvalidRA  = errors.New("right ascension is not a finite number")
	ErrInvalidDec = errors.New("declination outside [-90, 90]")
)

// CurrentLocationMaxZenithDeg is the largest zenith distance at which the
// "current location" marker is reported. It is independent of the dome
// horizon and tracking limits.
const CurrentLocationMaxZenithDeg = 88.0

// MaxAirMass is reported for samples at or below the horizon, where the
// secant approximation is undefined.
const MaxAirMass = math.MaxFloat64

// NewCoordinate builds a Coordinate, normalizing RA into [0, 360).
func NewCoordinate(raDeg, decDeg float64) (Coordinate, error) {
	if math.IsNaN(raDeg) || math.IsInf(raDeg, 0) {
		return Coordinate{}, ErrInvalidRA
	}
	if math.IsNaN(decDeg) || decDeg < -90 || decDeg > 90 {
		return Coordinate{}, ErrInvalidDec
	}
	return Coordinate{RADeg: normalizeAngle360(raDeg), DecDeg: decDeg}, nil
}

// EquatorialToHorizontal converts equatorial coordinates (RA/Dec) to local
// horizontal coordinates (Az/Alt) for a given observer and time.
//
// Refraction and the observer's elevation are ignored.
func EquatorialToHorizontal(c Coordinate, obs Observer, t time.Time) AltAz {
	lat := degToRad(obs.LatDeg)
	dec := degToRad(c.DecDeg)

	// Hour Angle = LST - RA
	ha := degToRad(LocalSiderealTime(t, obs.LonDeg) - c.RADeg)

	sinLat, cosLat := math.Sincos(lat)
	sinDec, cosDec := math.Sincos(dec)
	sinHA, cosHA := math.Sincos(ha)

	sinAlt := sinDec*sinLat + cosDec*cosLat*cosHA
	// Clamp to handle floating point errors
	if sinAlt > 1 {
		sinAlt = 1
	} else if sinAlt < -1 {
		sinAlt = -1
	}
	alt := math.Asin(sinAlt)

	// Azimuth from north through east
	y := -cosDec * sinHA
	x := sinDec*cosLat - cosDec*cosHA*sinLat
	az := math.Atan2(y, x)

	return AltAz{
		AzDeg:  normalizeAngle360(radToDeg(az)),
		AltDeg: radToDeg(alt),
	}
}

// Trajectory applies EquatorialToHorizontal to each instant, preserving order.
func Trajectory(c Coordinate, instants []time.Time, obs Observer) []AltAz {
	out := make([]AltAz, len(instants))
	for i, t := range instants {
		out[i] = EquatorialToHorizontal(c, obs, t)
	}
	return out
}

// CurrentLocation returns the position of c at t and whether it is close
// enough to the zenith to be shown as the current location marker.
func CurrentLocation(c Coordinate, t time.Time, obs Observer) (AltAz, bool) {
	pos := EquatorialToHorizontal(c, obs, t)
	return pos, 90-pos.AltDeg <= CurrentLocationMaxZenithDeg
}

// AirMass returns the secant-of-zenith-distance airmass for an altitude.
// At or below the horizon the airmass is undefined: MaxAirMass and false
// are returned so callers never see NaN or a negative value.
func AirMass(altDeg float64) (float64, bool) {
	if !(altDeg > 0) {
		return MaxAirMass, false
	}
	if altDeg >= 90 {
		return 1, true
	}
	return 1 / math.Sin(degToRad(altDeg)), true
}

// LocalSiderealTime returns the Local Mean Sidereal Time in degrees [0, 360)
// for a UTC instant and an east-positive longitude.
func LocalSiderealTime(t time.Time, lonDeg float64) float64 {
	return normalizeAngle360(greenwichMeanSiderealTime(t) + lonDeg)
}

// greenwichMeanSiderealTime returns GMST in degrees.
func greenwichMeanSiderealTime(t time.Time) float64 {
	// sidereal.Mean is in seconds of sidereal time; 86400 s = 360°.
	return normalizeAngle360(sidereal.Mean(julianDate(t)).Sec() / 240)
}

// julianDate returns the Julian Date of an instant.
func julianDate(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// normalizeAngle360 normalizes an angle to 0-360 degrees.
func normalizeAngle360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a -= 360
	}
	return a
}
