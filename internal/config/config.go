// Package config loads the planning tool's static site configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // timezone lookups without a system zoneinfo

	"github.com/KeckObservatory/planning-tool/internal/astro"
	"github.com/KeckObservatory/planning-tool/internal/dome"
)

// Config holds site and display settings. The JSON shape matches the
// observatory's config.json.
type Config struct {
	Latitude       float64         `json:"keck_latitude"`  // degrees, north positive
	Longitude      float64         `json:"keck_longitude"` // degrees, east positive
	ElevationKm    float64         `json:"keck_elevation"`
	Geometry       dome.Geometries `json:"keck_geometry"`
	TimeFormat     string          `json:"time_format"`
	DateTimeFormat string          `json:"date_time_format"`
	Timezone       string          `json:"timezone"`
	IntervalMin    int             `json:"sample_interval_minutes"`

	LogLevel string `json:"-"`
}

// Default returns the configuration for the Keck Observatory summit.
func Default() *Config {
	return &Config{
		Latitude:       19.8261,
		Longitude:      -155.4747,
		ElevationKm:    4.145,
		Geometry:       dome.DefaultGeometries(),
		TimeFormat:     "HH:mm",
		DateTimeFormat: "YYYY-MM-DD HH:mm",
		Timezone:       "Pacific/Honolulu",
		IntervalMin:    5,
		LogLevel:       "info",
	}
}

// Load reads the JSON file at path over the defaults, then applies
// environment overrides. An empty path falls back to PLANNING_CONFIG; if
// that is unset too, defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("PLANNING_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// A keck_geometry table in the file replaces the defaults as a whole.
		cfg.Geometry = nil
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if cfg.Geometry == nil {
			cfg.Geometry = dome.DefaultGeometries()
		}
	}

	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	if s := os.Getenv("SAMPLE_INTERVAL_MINUTES"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, errors.New("invalid SAMPLE_INTERVAL_MINUTES")
		}
		cfg.IntervalMin = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and that both domes have a usable geometry.
func (c *Config) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return errors.New("keck_latitude must be within [-90, 90]")
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return errors.New("keck_longitude must be within [-180, 180]")
	}
	if c.IntervalMin <= 0 {
		return errors.New("sample_interval_minutes must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}

	for _, d := range []dome.Dome{dome.K1, dome.K2} {
		geo, err := c.Geometry.Lookup(d)
		if err != nil {
			return err
		}
		if geo.R1 >= geo.TrackLimit {
			return fmt.Errorf("keck_geometry %s: r1 must be below trackLimit", d)
		}
		if geo.T2 > geo.T3 {
			return fmt.Errorf("keck_geometry %s: t2 must not exceed t3", d)
		}
	}
	return nil
}

// Location returns the observer described by the configuration.
func (c *Config) Location() astro.Observer {
	return astro.Observer{
		Name:       "Keck Observatory",
		LatDeg:     c.Latitude,
		LonDeg:     c.Longitude,
		ElevationM: c.ElevationKm * 1000,
	}
}

// Interval returns the sampling step.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMin) * time.Minute
}

// Zone returns the display time zone. Validate guarantees it loads.
func (c *Config) Zone() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TimeLayout returns TimeFormat as a Go time layout.
func (c *Config) TimeLayout() string {
	return GoLayout(c.TimeFormat)
}

// DateTimeLayout returns DateTimeFormat as a Go time layout.
func (c *Config) DateTimeLayout() string {
	return GoLayout(c.DateTimeFormat)
}

// dayjs-style tokens, longest first so "YYYY" wins over "YY".
var layoutTokens = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MMM", "Jan",
	"MM", "01",
	"DD", "02",
	"HH", "15",
	"hh", "03",
	"mm", "04",
	"ss", "05",
	"A", "PM",
	"Z", "-07:00",
)

// GoLayout converts a dayjs format string such as "YYYY-MM-DD HH:mm" to
// the equivalent Go layout.
func GoLayout(format string) string {
	return layoutTokens.Replace(format)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
