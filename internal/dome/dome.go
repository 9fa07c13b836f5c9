// Package dome evaluates whether a horizontal position can be observed
// through a Keck telescope given its dome and tracking constraints.
package dome

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KeckObservatory/planning-tool/internal/astro"
)

// Dome selects a telescope optical path.
type Dome string

const (
	K1 Dome = "K1"
	K2 Dome = "K2"
)

// Errors for dome selection and geometry lookup.
var (
	ErrUnknownDome     = errors.New("unknown dome")
	ErrMissingGeometry = errors.New("no geometry configured for dome")
)

// ParseDome parses a dome selector such as "K1" or "k2".
func ParseDome(s string) (Dome, error) {
	switch Dome(strings.ToUpper(strings.TrimSpace(s))) {
	case K1:
		return K1, nil
	case K2:
		return K2, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDome, s)
	}
}

// Geometry is the mechanical exclusion model of one dome. Altitudes and
// azimuths are in degrees.
//
// R0..R1 over T0..T1 is the telescope bottom limit (R1 is the minimum
// altitude), R2..R3 over T2..T3 is the Nasmyth deck obstruction, and
// TrackLimit is the highest altitude the mount can track.
type Geometry struct {
	R0         float64 `json:"r0"`
	R1         float64 `json:"r1"`
	R2         float64 `json:"r2"`
	R3         float64 `json:"r3"`
	T0         float64 `json:"t0"`
	T1         float64 `json:"t1"`
	T2         float64 `json:"t2"`
	T3         float64 `json:"t3"`
	TrackLimit float64 `json:"trackLimit"`
}

// Geometries maps each dome to its geometry.
type Geometries map[Dome]Geometry

// Lookup returns the geometry for d or ErrMissingGeometry.
func (g Geometries) Lookup(d Dome) (Geometry, error) {
	geo, ok := g[d]
	if !ok {
		return Geometry{}, fmt.Errorf("%w: %s", ErrMissingGeometry, d)
	}
	return geo, nil
}

// DefaultGeometries returns the Keck I and Keck II dome models.
func DefaultGeometries() Geometries {
	return Geometries{
		K1: {R0: 0, R1: 18, R2: 0, R3: 33.3, T0: 0, T1: 360, T2: 185.3, T3: 332.8, TrackLimit: 85},
		K2: {R0: 0, R1: 18, R2: 0, R3: 36.8, T0: 0, T1: 360, T2: 5.3, T3: 146.2, TrackLimit: 85},
	}
}

// Reason is why a position is not observable.
type Reason int

const (
	DeckBlocking Reason = iota
	BelowHorizon
	AboveTrackingLimits
)

// String returns the display label for a reason.
func (r Reason) String() string {
	switch r {
	case DeckBlocking:
		return "Deck Blocking"
	case BelowHorizon:
		return "Below Horizon"
	case AboveTrackingLimits:
		return "Above Tracking Limits"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Color returns the legend color used for a reason.
func (r Reason) Color() string {
	switch r {
	case DeckBlocking:
		return "#7570b3"
	case BelowHorizon:
		return "#e7298a"
	case AboveTrackingLimits:
		return "#d95f02"
	default:
		return ObservableColor
	}
}

// ObservableColor is the legend color for observable samples.
const ObservableColor = "#1b9e77"

// Verdict is the observability of one position.
type Verdict struct {
	Observable bool
	Reasons    []Reason // empty iff Observable
}

// Color returns the legend color of the first reason, or ObservableColor.
func (v Verdict) Color() string {
	if len(v.Reasons) == 0 {
		return ObservableColor
	}
	return v.Reasons[0].Color()
}

// Evaluate decides whether pos is observable under geo. Every triggered
// reason is reported, in Reason order.
func Evaluate(pos astro.AltAz, geo Geometry) Verdict {
	var reasons []Reason

	overlapsDeck := pos.AzDeg >= geo.T2 && pos.AzDeg <= geo.T3
	belowDeck := pos.AltDeg >= geo.R1 && pos.AltDeg <= geo.R3
	if overlapsDeck && belowDeck {
		reasons = append(reasons, DeckBlocking)
	}
	if pos.AltDeg < geo.R1 {
		reasons = append(reasons, BelowHorizon)
	}
	if pos.AltDeg > geo.TrackLimit {
		reasons = append(reasons, AboveTrackingLimits)
	}

	return Verdict{Observable: len(reasons) == 0, Reasons: reasons}
}
