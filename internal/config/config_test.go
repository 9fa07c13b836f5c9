package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KeckObservatory/planning-tool/internal/dome"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PLANNING_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.InDelta(t, 19.8261, cfg.Latitude, 1e-9)
	assert.InDelta(t, -155.4747, cfg.Longitude, 1e-9)
	assert.Equal(t, 5*time.Minute, cfg.Interval())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "Pacific/Honolulu", cfg.Zone().String())
	assert.Equal(t, dome.DefaultGeometries(), cfg.Geometry)

	obs := cfg.Location()
	assert.InDelta(t, 4145, obs.ElevationM, 1e-9)
	assert.InDelta(t, cfg.Latitude, obs.LatDeg, 1e-9)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `{
		"keck_latitude": 19.8,
		"keck_longitude": -155.5,
		"keck_elevation": 4.1,
		"timezone": "UTC",
		"time_format": "HH:mm:ss",
		"keck_geometry": {
			"K1": {"r0": 0, "r1": 20, "r2": 0, "r3": 40, "t0": 0, "t1": 360, "t2": 100, "t3": 260, "trackLimit": 84},
			"K2": {"r0": 0, "r1": 18, "r2": 0, "r3": 36.8, "t0": 0, "t1": 360, "t2": 5.3, "t3": 146.2, "trackLimit": 85}
		}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 19.8, cfg.Latitude, 1e-9)
	assert.Equal(t, time.UTC.String(), cfg.Zone().String())
	assert.Equal(t, "15:04:05", cfg.TimeLayout())
	// Unset keys keep their defaults.
	assert.Equal(t, 5, cfg.IntervalMin)
	assert.Equal(t, "2006-01-02 15:04", cfg.DateTimeLayout())

	k1, err := cfg.Geometry.Lookup(dome.K1)
	require.NoError(t, err)
	assert.Equal(t, dome.Geometry{R1: 20, R3: 40, T1: 360, T2: 100, T3: 260, TrackLimit: 84}, k1)
}

func TestLoad_PathFromEnv(t *testing.T) {
	path := writeConfig(t, `{"sample_interval_minutes": 10}`)
	t.Setenv("PLANNING_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.Interval())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PLANNING_CONFIG", "")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SAMPLE_INTERVAL_MINUTES", "15")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 15*time.Minute, cfg.Interval())
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("PLANNING_CONFIG", "")

	tests := []struct {
		name    string
		body    string
		env     string
		wantErr string
	}{
		{name: "bad json", body: `{`, wantErr: "parse config"},
		{name: "latitude", body: `{"keck_latitude": 91}`, wantErr: "keck_latitude"},
		{name: "longitude", body: `{"keck_longitude": -200}`, wantErr: "keck_longitude"},
		{name: "interval", body: `{"sample_interval_minutes": -1}`, wantErr: "sample_interval_minutes"},
		{name: "timezone", body: `{"timezone": "Mars/Olympus"}`, wantErr: "timezone"},
		{name: "missing dome", body: `{"keck_geometry": {"K1": {"r1": 18, "trackLimit": 85}}}`, wantErr: "no geometry"},
		{name: "bad geometry", body: `{"keck_geometry": {
			"K1": {"r1": 90, "trackLimit": 85},
			"K2": {"r1": 18, "trackLimit": 85}}}`, wantErr: "r1 must be below trackLimit"},
		{name: "env interval", body: `{}`, env: "zero", wantErr: "SAMPLE_INTERVAL_MINUTES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("SAMPLE_INTERVAL_MINUTES", tt.env)
			}
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "read config")
}

func TestGoLayout(t *testing.T) {
	tests := map[string]string{
		"HH:mm":               "15:04",
		"YYYY-MM-DD HH:mm:ss": "2006-01-02 15:04:05",
		"DD MMM YY":           "02 Jan 06",
		"hh:mm A":             "03:04 PM",
	}
	for in, want := range tests {
		assert.Equal(t, want, GoLayout(in), in)
	}
}
