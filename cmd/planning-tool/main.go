// Command planning-tool computes when targets are observable from the Keck
// telescopes over an observing semester.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"golang.org/x/term"

	"github.com/KeckObservatory/planning-tool/internal/astro"
	"github.com/KeckObservatory/planning-tool/internal/config"
	"github.com/KeckObservatory/planning-tool/internal/dome"
	"github.com/KeckObservatory/planning-tool/internal/export"
	"github.com/KeckObservatory/planning-tool/internal/logging"
	"github.com/KeckObservatory/planning-tool/internal/semester"
	"github.com/KeckObservatory/planning-tool/internal/target"
	"github.com/KeckObservatory/planning-tool/internal/ui"
	"github.com/KeckObservatory/planning-tool/internal/visibility"
)

// CLI flags for headless mode
var (
	summaryMode  bool
	snapshotPath string
	withSamples  bool
	nowMode      bool
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config.json (default $PLANNING_CONFIG)")
	semesterID := flag.String("semester", "", "Semester, e.g. 2026B (default: current)")
	domeName := flag.String("dome", "K1", "Dome geometry (K1 or K2)")
	targetsPath := flag.String("targets", "", "JSON file with a list of targets")
	name := flag.String("name", "", "Target name for -ra/-dec")
	ra := flag.String("ra", "", "Target right ascension, HH:MM:SS.ss")
	dec := flag.String("dec", "", "Target declination, ±DD:MM:SS.s")
	interval := flag.Duration("interval", 0, "Sampling interval (default from config)")
	workers := flag.Int("workers", 0, "Concurrent day computations (default GOMAXPROCS)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.StringVar(&snapshotPath, "snapshot-path", "", "Export JSON snapshot to file (use - for stdout)")
	flag.BoolVar(&withSamples, "samples", false, "Include per-sample data in the JSON snapshot")
	flag.BoolVar(&nowMode, "now", false, "Single-line current position and tonight's hours")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *interval > 0 {
		cfg.IntervalMin = max(1, int(interval.Minutes()))
	}

	// Set up logging
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		logger.SetFormat(logging.FormatJSON)
	}

	d, err := dome.ParseDome(*domeName)
	if err != nil {
		fatal(logger, err)
	}
	geo, err := cfg.Geometry.Lookup(d)
	if err != nil {
		fatal(logger, err)
	}

	clock := clockwork.NewRealClock()
	sem := semester.Current(clock)
	if *semesterID != "" {
		if id, err := semester.Parse(*semesterID); err == nil {
			sem = id
		} else {
			logger.Warn("%v", err)
		}
	}

	targets, err := loadTargets(*targetsPath, *name, *ra, *dec)
	if err != nil {
		fatal(logger, err)
	}
	entries := resolve(targets, logger)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Headless mode: no TUI
	headless := summaryMode || snapshotPath != "" || nowMode
	if headless {
		if len(entries) == 0 {
			fatal(logger, errors.New("no targets: use -targets or -ra/-dec"))
		}
		semText := sem.String()
		if *semesterID != "" {
			semText = *semesterID
		}
		run := headlessRun{
			cfg:      cfg,
			dome:     d,
			geometry: geo,
			semester: semText,
			workers:  *workers,
			clock:    clock,
			logger:   logger,
		}
		if err := run.output(ctx, os.Stdout, entries); err != nil {
			fatal(logger, err)
		}
		return
	}

	// Create TUI model
	model := ui.New(entries, ui.Options{
		Observer:   cfg.Location(),
		Geometries: cfg.Geometry,
		Interval:   cfg.Interval(),
		Zone:       cfg.Zone(),
		TimeLayout: cfg.TimeLayout(),
		Semester:   sem,
		Dome:       d,
		Clock:      clock,
		Logger:     logging.Discard(),
	})

	// Run TUI (blocks until quit)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func fatal(logger *logging.Logger, err error) {
	logger.Error("%v", err)
	os.Exit(1)
}

// loadTargets reads the target file and appends a target built from the
// -ra/-dec flags when given.
func loadTargets(path, name, ra, dec string) ([]target.Target, error) {
	var targets []target.Target
	if path != "" {
		loaded, err := target.LoadFile(path)
		if err != nil {
			return nil, err
		}
		targets = loaded
	}

	if ra != "" || dec != "" {
		if name == "" {
			name = "target"
		}
		t := target.New(name)
		if err := t.Set("ra", ra); err != nil {
			return nil, err
		}
		if err := t.Set("dec", dec); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// resolve drops targets whose position cannot be determined.
func resolve(targets []target.Target, logger *logging.Logger) []ui.Entry {
	entries := make([]ui.Entry, 0, len(targets))
	for _, t := range targets {
		c, err := t.Coordinate()
		if err != nil {
			logger.Warn("skipping target: %v", err)
			continue
		}
		entries = append(entries, ui.Entry{Target: t, Coord: c})
	}
	return entries
}

type headlessRun struct {
	cfg      *config.Config
	dome     dome.Dome
	geometry dome.Geometry
	semester string
	workers  int
	clock    clockwork.Clock
	logger   *logging.Logger
}

// output handles all headless modes without starting the TUI.
func (r headlessRun) output(ctx context.Context, w io.Writer, entries []ui.Entry) error {
	obs := r.cfg.Location()

	if nowMode {
		return r.writeNow(w, entries)
	}

	var snapshot io.Writer
	if snapshotPath == "-" {
		snapshot = w
	} else if snapshotPath != "" {
		f, err := os.Create(snapshotPath)
		if err != nil {
			return fmt.Errorf("create snapshot file: %w", err)
		}
		defer f.Close()
		snapshot = f
	}

	for i, e := range entries {
		summary, err := visibility.Semester(ctx, e.Coord, r.semester, obs, r.geometry, r.cfg.Interval(),
			visibility.Options{Dome: r.dome, Workers: r.workers, Logger: r.logger.With("target", e.Target.Label())})
		if err != nil {
			return fmt.Errorf("%s: %w", e.Target.Label(), err)
		}

		// Export JSON if requested
		if snapshot != nil {
			exp := export.ExportSemester(e.Target, e.Coord, summary, r.cfg.Interval(), r.clock.Now(), withSamples)
			if err := exp.WriteJSON(snapshot); err != nil {
				return fmt.Errorf("write JSON: %w", err)
			}
		}

		// Print summary table if requested
		if summaryMode {
			if i > 0 {
				fmt.Fprintln(w)
			}
			export.WriteSummaryTable(w, e.Target.Label(), summary, r.cfg.Zone(), r.cfg.TimeLayout())
		}
	}
	return nil
}

// writeNow prints one line per target: where it is now and tonight's hours.
func (r headlessRun) writeNow(w io.Writer, entries []ui.Entry) error {
	obs := r.cfg.Location()
	now := r.clock.Now()
	// The observing night started on the previous civil date until local noon.
	tonight := now.In(r.cfg.Zone()).Add(-12 * time.Hour)

	for _, e := range entries {
		day, err := visibility.Day(e.Coord, tonight, obs, r.geometry, r.cfg.Interval())
		if err != nil {
			return fmt.Errorf("%s: %w", e.Target.Label(), err)
		}

		pos, shown := astro.CurrentLocation(e.Coord, now, obs)
		where := "below horizon"
		if shown {
			v := dome.Evaluate(pos, r.geometry)
			where = fmt.Sprintf("alt %.1f° az %.1f°", pos.AltDeg, pos.AzDeg)
			if !v.Observable {
				where += " (" + v.Reasons[0].String() + ")"
			}
		}
		fmt.Fprintf(w, "%-16s %s  tonight %.2f h  now %s\n", e.Target.Label(), r.dome, day.ObservableHours, where)
	}
	return nil
}
