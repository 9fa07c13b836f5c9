package dome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KeckObservatory/planning-tool/internal/astro"
)

var testGeometry = Geometry{R1: 18, R3: 45, T2: 100, T3: 260, TrackLimit: 85}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		pos     astro.AltAz
		want    bool
		reasons []Reason
	}{
		{"deck blocking", astro.AltAz{AltDeg: 30, AzDeg: 180}, false, []Reason{DeckBlocking}},
		{"below horizon", astro.AltAz{AltDeg: 10, AzDeg: 0}, false, []Reason{BelowHorizon}},
		{"above tracking limit", astro.AltAz{AltDeg: 87, AzDeg: 0}, false, []Reason{AboveTrackingLimits}},
		{"observable", astro.AltAz{AltDeg: 60, AzDeg: 0}, true, nil},
		{"above deck inside deck azimuths", astro.AltAz{AltDeg: 60, AzDeg: 180}, true, nil},
		{"deck edges are inclusive", astro.AltAz{AltDeg: 45, AzDeg: 260}, false, []Reason{DeckBlocking}},
		{"horizon edge is observable", astro.AltAz{AltDeg: 18, AzDeg: 0}, true, nil},
		{"tracking edge is observable", astro.AltAz{AltDeg: 85, AzDeg: 0}, true, nil},
		{"below horizon behind deck", astro.AltAz{AltDeg: 10, AzDeg: 180}, false, []Reason{BelowHorizon}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(tt.pos, testGeometry)
			assert.Equal(t, tt.want, v.Observable)
			assert.Equal(t, tt.reasons, v.Reasons)
			assert.Equal(t, v.Observable, len(v.Reasons) == 0)
		})
	}
}

func TestEvaluate_ReportsEveryReason(t *testing.T) {
	// Overlapping limits so one position trips two checks.
	geo := Geometry{R1: 18, R3: 90, T2: 0, T3: 360, TrackLimit: 80}

	v := Evaluate(astro.AltAz{AltDeg: 85, AzDeg: 10}, geo)
	require.False(t, v.Observable)
	assert.Equal(t, []Reason{DeckBlocking, AboveTrackingLimits}, v.Reasons)
}

func TestReasonStrings(t *testing.T) {
	assert.Equal(t, "Deck Blocking", DeckBlocking.String())
	assert.Equal(t, "Below Horizon", BelowHorizon.String())
	assert.Equal(t, "Above Tracking Limits", AboveTrackingLimits.String())

	text, err := BelowHorizon.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Below Horizon", string(text))
}

func TestVerdictColor(t *testing.T) {
	assert.Equal(t, ObservableColor, Verdict{Observable: true}.Color())
	assert.Equal(t, "#7570b3", Verdict{Reasons: []Reason{DeckBlocking, BelowHorizon}}.Color())
	assert.Equal(t, "#d95f02", Verdict{Reasons: []Reason{AboveTrackingLimits}}.Color())
}

func TestParseDome(t *testing.T) {
	for in, want := range map[string]Dome{"K1": K1, "k2": K2, " K2 ": K2} {
		got, err := ParseDome(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseDome("K3")
	assert.ErrorIs(t, err, ErrUnknownDome)
}

func TestGeometriesLookup(t *testing.T) {
	geos := DefaultGeometries()

	for _, d := range []Dome{K1, K2} {
		geo, err := geos.Lookup(d)
		require.NoError(t, err)
		assert.Less(t, geo.R1, geo.R3)
		assert.Less(t, geo.T2, geo.T3)
		assert.Greater(t, geo.TrackLimit, geo.R3)
	}

	delete(geos, K1)
	_, err := geos.Lookup(K1)
	assert.ErrorIs(t, err, ErrMissingGeometry)
}
