// Package ui provides the terminal semester browser using Bubble Tea.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"

	"github.com/KeckObservatory/planning-tool/internal/astro"
	"github.com/KeckObservatory/planning-tool/internal/dome"
	"github.com/KeckObservatory/planning-tool/internal/logging"
	"github.com/KeckObservatory/planning-tool/internal/semester"
	"github.com/KeckObservatory/planning-tool/internal/target"
	"github.com/KeckObservatory/planning-tool/internal/version"
	"github.com/KeckObservatory/planning-tool/internal/visibility"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewSemester ViewMode = iota
	ViewNight
)

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// summaryMsg carries a finished semester computation.
	summaryMsg struct {
		key     visibility.CacheKey
		summary visibility.SemesterSummary
		err     error
	}
)

// Entry is a target with its resolved position.
type Entry struct {
	Target target.Target
	Coord  astro.Coordinate
}

// Options configures the browser.
type Options struct {
	Observer   astro.Observer
	Geometries dome.Geometries
	Interval   time.Duration
	Zone       *time.Location
	TimeLayout string
	Semester   semester.ID
	Dome       dome.Dome
	Clock      clockwork.Clock
	Logger     *logging.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	opts    Options
	entries []Entry
	cache   *visibility.Cache

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	now       time.Time

	// Selection
	targetIdx int
	semester  semester.ID
	dome      dome.Dome
	dayIdx    int
	computing map[visibility.CacheKey]bool
}

// New creates a new root UI model.
func New(entries []Entry, opts Options) Model {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Zone == nil {
		opts.Zone = time.UTC
	}
	if opts.TimeLayout == "" {
		opts.TimeLayout = "15:04"
	}
	if opts.Interval <= 0 {
		opts.Interval = visibility.DefaultInterval
	}
	if opts.Semester.IsZero() {
		opts.Semester = semester.Current(opts.Clock)
	}
	if opts.Dome == "" {
		opts.Dome = dome.K1
	}

	return Model{
		opts:      opts,
		entries:   entries,
		cache:     visibility.NewCache(opts.Clock),
		semester:  opts.Semester,
		dome:      opts.Dome,
		now:       opts.Clock.Now(),
		computing: make(map[visibility.CacheKey]bool),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.opts.Clock),
		m.computeCmd(m.key()),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "tab", "enter":
			m.viewMode = (m.viewMode + 1) % 2
		case "esc":
			m.viewMode = ViewSemester

		case "d":
			// Toggle between the two domes
			if m.dome == dome.K1 {
				m.dome = dome.K2
			} else {
				m.dome = dome.K1
			}
			cmds = append(cmds, m.refresh())
		case "]":
			m.semester = m.semester.Next()
			m.dayIdx = 0
			cmds = append(cmds, m.refresh())
		case "[":
			m.semester = m.semester.Prev()
			m.dayIdx = 0
			cmds = append(cmds, m.refresh())
		case "n":
			if len(m.entries) > 0 {
				m.targetIdx = (m.targetIdx + 1) % len(m.entries)
				cmds = append(cmds, m.refresh())
			}
		case "p":
			if len(m.entries) > 0 {
				m.targetIdx = (m.targetIdx + len(m.entries) - 1) % len(m.entries)
				cmds = append(cmds, m.refresh())
			}

		case "up", "k":
			if m.dayIdx > 0 {
				m.dayIdx--
			}
		case "down", "j":
			if summary, ok := m.summary(); ok && m.dayIdx < len(summary.Days)-1 {
				m.dayIdx++
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		m.now = time.Time(msg)
		cmds = append(cmds, tickCmd(m.opts.Clock))

	case summaryMsg:
		delete(m.computing, msg.key)
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Visibility failed: %v", msg.err)
			m.opts.Logger.Error("%s %s %s: %v", msg.key.TargetID, msg.key.Dome, msg.key.Semester, msg.err)
			break
		}
		// Results are kept even if the selection moved on.
		m.cache.Put(msg.key, msg.summary)
		if msg.key == m.key() {
			m.statusMsg = ""
		}
	}

	return m, tea.Batch(cmds...)
}

// key identifies the current selection.
func (m Model) key() visibility.CacheKey {
	k := visibility.CacheKey{Dome: m.dome, Semester: m.semester.String()}
	if e, ok := m.entry(); ok {
		k.TargetID = e.Target.ID
	}
	return k
}

func (m Model) entry() (Entry, bool) {
	if m.targetIdx < 0 || m.targetIdx >= len(m.entries) {
		return Entry{}, false
	}
	return m.entries[m.targetIdx], true
}

func (m Model) summary() (visibility.SemesterSummary, bool) {
	return m.cache.Get(m.key())
}

// refresh schedules a computation for the current selection if needed.
func (m *Model) refresh() tea.Cmd {
	key := m.key()
	m.cache.SetFocus(key)
	if _, ok := m.cache.Get(key); ok || m.computing[key] {
		return nil
	}
	m.computing[key] = true
	return m.computeCmd(key)
}

// computeCmd runs the semester computation off the update loop.
func (m Model) computeCmd(key visibility.CacheKey) tea.Cmd {
	e, ok := m.entry()
	if !ok {
		return nil
	}
	geo, err := m.opts.Geometries.Lookup(key.Dome)
	if err != nil {
		return func() tea.Msg { return summaryMsg{key: key, err: err} }
	}

	opts := m.opts
	return func() tea.Msg {
		s, err := visibility.Semester(context.Background(), e.Coord, key.Semester, opts.Observer, geo, opts.Interval,
			visibility.Options{Dome: key.Dome, Logger: opts.Logger})
		return summaryMsg{key: key, summary: s, err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	summary, ok := m.summary()
	switch {
	case len(m.entries) == 0:
		content = dimStyle.Render("  No targets loaded")
	case !ok:
		content = dimStyle.Render(fmt.Sprintf("  Computing %s %s...", m.semester, m.dome))
	case m.viewMode == ViewNight:
		content = m.renderNight(summary)
	default:
		content = RenderSemesterList(summary, m.dayIdx, m.listHeight(), m.opts.Zone, m.opts.TimeLayout)
	}

	return m.renderFrame(content)
}

func (m Model) renderFrame(content string) string {
	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) listHeight() int {
	// Header and footer take about 8 lines
	return max(m.height-8, 5)
}

func (m Model) renderHeader() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("  Keck Planning Tool v%s", version.Version)))
	b.WriteString(dimStyle.Render("  " + m.now.In(m.opts.Zone).Format("2006-01-02 15:04 MST")))
	b.WriteString("\n")

	if e, ok := m.entry(); ok {
		b.WriteString(labelStyle.Render("  " + e.Target.Label()))
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %s %s", astro.FormatRA(e.Coord.RADeg), astro.FormatDec(e.Coord.DecDeg))))
		if len(m.entries) > 1 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  (%d/%d)", m.targetIdx+1, len(m.entries))))
		}
		b.WriteString("\n")
	}

	line := fmt.Sprintf("  Semester %s   Dome %s", m.semester, m.dome)
	if s, ok := m.summary(); ok {
		line += fmt.Sprintf("   Total %.1f h", s.TotalHours())
	}
	b.WriteString(accentStyle.Render(line))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderNight(s visibility.SemesterSummary) string {
	if len(s.Days) == 0 {
		return dimStyle.Render("  No nights in semester")
	}
	day := s.Days[min(m.dayIdx, len(s.Days)-1)]

	var now *astro.AltAz
	if e, ok := m.entry(); ok && !m.now.Before(day.Night.Sunset) && !m.now.After(day.Night.NightEnd) {
		if pos, visible := astro.CurrentLocation(e.Coord, m.now, m.opts.Observer); visible {
			now = &pos
		}
	}
	return RenderNightPanel(day, m.opts.Observer, now, m.opts.Zone, m.opts.TimeLayout, max(m.width-4, 20))
}

func (m Model) renderFooter() string {
	var help string
	switch m.viewMode {
	case ViewNight:
		help = "↑↓: day | d: dome | esc: back | q: quit"
	default:
		help = "↑↓: day | enter: night | d: dome | [/]: semester | n/p: target | q: quit"
	}

	footer := "  " + dimStyle.Render(help)
	if len(m.computing) > 0 {
		footer += "  " + accentStyle.Render(fmt.Sprintf("computing %d", len(m.computing)))
	}
	if m.statusMsg != "" {
		footer += "\n  " + errorStyle.Render(m.statusMsg)
	}
	return footer
}

func tickCmd(clock clockwork.Clock) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return TickMsg(clock.Now())
	})
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
)
