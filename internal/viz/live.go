package viz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/metrics"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	width        = 80
	height       = 24
	statsWidth   = 40
	trailLen     = 400
	energyLen    = 240
	rotateStep   = math.Pi / 24
	graphWidth   = statsWidth - 10
	graphHeight  = 5
	defaultEvery = 6
)

type snapshotMsg dynamo.Snapshot

type streamDoneMsg struct{ err error }

// waitForSnapshot blocks on the stream for the next snapshot. Only one wait
// is ever outstanding, so while paused the producer blocks on its send.
func waitForSnapshot(ch <-chan dynamo.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return streamDoneMsg{}
		}
		return snapshotMsg(s)
	}
}

func waitForDone(errc <-chan error) tea.Cmd {
	return func() tea.Msg {
		if errc == nil {
			return streamDoneMsg{}
		}
		return streamDoneMsg{err: <-errc}
	}
}

// Model is the live orbit view. It only reads snapshots; the simulation is
// stepped by whoever feeds the channel.
type Model struct {
	title    string
	model    dynamo.ForceModel
	snaps    <-chan dynamo.Snapshot
	errc     <-chan error
	duration float64

	current dynamo.Snapshot
	names   []string
	glyphs  []rune
	colors  []colorful.Color
	trails  map[string][]r3.Vec

	energy0 float64
	drift   []float64

	canvas *Canvas
	camera *Camera
	theme  Theme
	styles styles
	// follow is the index of the body the camera tracks, -1 for the origin.
	follow int

	width, height int
	paused        bool
	waiting       bool
	done          bool
	err           error
	showHelp      bool
}

// NewModel builds a live view starting from first. duration is the total
// simulated time the stream will cover and only drives the progress bar.
func NewModel(title string, model dynamo.ForceModel, first dynamo.Snapshot, snaps <-chan dynamo.Snapshot, errc <-chan error, duration float64) Model {
	m := Model{
		title:    title,
		model:    model,
		snaps:    snaps,
		errc:     errc,
		duration: duration,
		trails:   make(map[string][]r3.Vec),
		canvas:   NewCanvas(width, height),
		theme:    Themes[0],
		follow:   -1,
		width:    width,
		height:   height,
	}
	m.styles = newStyles(m.theme)

	positions := make([]r3.Vec, len(first.Bodies))
	for i, b := range first.Bodies {
		m.names = append(m.names, b.Name)
		m.glyphs = append(m.glyphs, Glyph(b.Name))
		positions[i] = b.Position
	}
	m.colors = Palette(first.Bodies)
	m.camera = NewCamera(FitScale(r3.Vec{}, positions))
	m.energy0 = metrics.TotalEnergy(model, first.Bodies)
	m.apply(first)
	return m
}

// SetTheme selects a theme by name.
func (m *Model) SetTheme(name string) {
	m.theme = GetTheme(name)
	m.styles = newStyles(m.theme)
}

// Err is the error the stream ended with, if any.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd {
	if m.snaps == nil {
		return nil
	}
	return waitForSnapshot(m.snaps)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = max(20, msg.Width-statsWidth-6)
		m.height = max(8, msg.Height-3)
		m.canvas = NewCanvas(m.width, m.height)

	case snapshotMsg:
		m.waiting = false
		m.apply(dynamo.Snapshot(msg))
		if !m.paused {
			m.waiting = true
			return m, waitForSnapshot(m.snaps)
		}

	case streamDoneMsg:
		if !m.done {
			m.done = true
			return m, waitForDone(m.errc)
		}
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.err = msg.err
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ":
		m.paused = !m.paused
		if !m.paused && !m.waiting && !m.done && m.snaps != nil {
			m.waiting = true
			return m, waitForSnapshot(m.snaps)
		}
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case "x", "up":
		m.camera.RotateX(rotateStep)
	case "X", "down":
		m.camera.RotateX(-rotateStep)
	case "z", "right":
		m.camera.RotateZ(rotateStep)
	case "Z", "left":
		m.camera.RotateZ(-rotateStep)
	case "p":
		m.camera.Perspective = !m.camera.Perspective
	case "c":
		m.follow++
		if m.follow >= len(m.names) {
			m.follow = -1
		}
		m.centerCamera()
	case "f":
		m.fit()
	case "0":
		m.camera.ResetView()
	case "t":
		m.theme = nextTheme(m.theme)
		m.styles = newStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// apply records a snapshot: trails, energy drift and camera follow.
func (m *Model) apply(s dynamo.Snapshot) {
	m.current = s
	for _, b := range s.Bodies {
		tr := append(m.trails[b.Name], b.Position)
		if len(tr) > trailLen {
			tr = tr[len(tr)-trailLen:]
		}
		m.trails[b.Name] = tr
	}

	e := metrics.TotalEnergy(m.model, s.Bodies)
	d := 0.0
	if m.energy0 != 0 {
		d = (e - m.energy0) / math.Abs(m.energy0) * 100
	}
	m.drift = append(m.drift, d)
	if len(m.drift) > energyLen {
		m.drift = m.drift[len(m.drift)-energyLen:]
	}
	m.centerCamera()
}

func (m *Model) centerCamera() {
	if m.follow < 0 || m.follow >= len(m.names) {
		m.camera.Center = r3.Vec{}
		return
	}
	if b, ok := m.current.Find(m.names[m.follow]); ok {
		m.camera.Center = b.Position
	}
}

func (m *Model) fit() {
	positions := make([]r3.Vec, len(m.current.Bodies))
	for i, b := range m.current.Bodies {
		positions[i] = b.Position
	}
	m.camera.Scale = FitScale(m.camera.Center, positions)
	m.camera.Zoom = 1
}

func (m Model) draw() string {
	m.canvas.Clear()

	positions := make([]r3.Vec, len(m.current.Bodies))
	glyphs := make([]rune, len(m.current.Bodies))
	trails := make([][]r3.Vec, 0, len(m.current.Bodies))
	for i, b := range m.current.Bodies {
		positions[i] = b.Position
		glyphs[i] = m.glyph(b.Name)
		trails = append(trails, m.trails[b.Name])
	}
	RenderBodies(m.canvas, m.camera, positions, glyphs, trails)

	dots := lipgloss.NewStyle().Foreground(m.theme.Muted)
	return m.canvas.Render(dots, func(i int) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipColor(m.color(i))).Bold(true)
	})
}

func (m Model) glyph(name string) rune {
	for i, n := range m.names {
		if n == name {
			return m.glyphs[i]
		}
	}
	return Glyph(name)
}

func (m Model) color(i int) colorful.Color {
	if i >= 0 && i < len(m.colors) {
		return m.colors[i]
	}
	return BodyColor(dynamo.Body{}, i)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.styles.failed.Render("FAILED")
	case m.done:
		return m.styles.paused.Render("DONE")
	case m.paused:
		return m.styles.paused.Render("PAUSED")
	}
	return m.styles.running.Render("RUNNING")
}

func (m Model) View() string {
	st := m.styles
	var s strings.Builder

	s.WriteString(GradientText(strings.ToUpper(m.title), m.theme.Primary, m.theme.Secondary) + "  " + m.status() + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2f d", m.current.Time/86400))
	row("Step", fmt.Sprintf("%d", m.current.Step))
	if m.duration > 0 {
		s.WriteString(st.label.Render("Progress") + ProgressBar(m.current.Time/m.duration, statsWidth-14, st.running) + "\n")
	}
	center := "origin"
	if m.follow >= 0 && m.follow < len(m.names) {
		center = m.names[m.follow]
	}
	row("Center", center)
	row("Zoom", fmt.Sprintf("%.2fx", m.camera.Zoom))

	drift := 0.0
	if len(m.drift) > 0 {
		drift = m.drift[len(m.drift)-1]
	}
	row("ΔE", fmt.Sprintf("%+.4f%%", drift))
	if len(m.drift) > 1 {
		chart := asciigraph.Plot(m.drift,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Precision(3),
			asciigraph.Caption("energy drift %"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	s.WriteString("\n")
	var ref dynamo.Body
	if m.follow >= 0 && m.follow < len(m.names) {
		ref, _ = m.current.Find(m.names[m.follow])
	}
	for i, b := range m.current.Bodies {
		swatch := lipgloss.NewStyle().Foreground(lipColor(m.color(i))).Render(string(m.glyph(b.Name)))
		dist := r3.Norm(r3.Sub(b.Position, ref.Position)) / 1.495978707e11
		speed := r3.Norm(r3.Sub(b.Velocity, ref.Velocity)) / 1000
		s.WriteString(fmt.Sprintf("%s %-9s %s\n", swatch, truncate(b.Name, 9),
			st.muted.Render(fmt.Sprintf("%7.3f AU %6.2f km/s", dist, speed))))
	}

	if m.err != nil {
		s.WriteString("\n" + st.failed.Render(truncate(m.err.Error(), statsWidth-4)) + "\n")
	}
	s.WriteString("\n" + st.muted.Render("SPC pause  q quit  ? help"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.draw()), st.panel.Render(s.String()))
	if m.showHelp {
		return st.panel.Render(helpText) + "\n" + view
	}
	return view
}

const helpText = `Space    pause / resume
+ / -    zoom
x / X    tilt        (↑ ↓)
z / Z    spin        (← →)
p        perspective
c        follow next body
f        fit all bodies
0        reset view
t        next theme
q        quit`

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RunLive streams sim for duration in a full-screen view and returns when
// the user quits. Quitting early cancels the stream.
func RunLive(ctx context.Context, sim *dynamo.Simulation, title string, duration float64, every int, theme string) error {
	if every <= 0 {
		every = defaultEvery
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	snaps := make(chan dynamo.Snapshot)
	errc := make(chan error, 1)
	finished := make(chan struct{})
	first := sim.Snapshot()
	var streamErr error
	go func() {
		defer close(finished)
		streamErr = sim.Stream(ctx, duration, every, snaps)
		errc <- streamErr
	}()

	m := NewModel(title, sim.Model(), first, snaps, errc, duration)
	if theme != "" {
		m.SetTheme(theme)
	}

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	cancel()
	// Drain so the producer can observe cancellation and exit.
	for range snaps {
	}
	<-finished
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if fm, ok := final.(Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	if streamErr != nil && !errors.Is(streamErr, dynamo.ErrContextCanceled) {
		return streamErr
	}
	return nil
}
