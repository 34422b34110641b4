// Package tui is the terminal front end: a braille plot of distance over
// time with mouse pan, zoom and drag-to-zoom, and a readout of the sample
// under the cursor.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/banshee-data/beacon.scope/internal/scope"
	"github.com/banshee-data/beacon.scope/internal/stream"
	"github.com/banshee-data/beacon.scope/internal/viewport"
)

const (
	axisWidth  = 9 // value labels plus the axis rule
	headerRows = 1
	// x labels, readout title, readout values, stats, key hints
	footerRows = 5
)

// Options configure a Model.
type Options struct {
	// URL is dialled on start and by the reconnect key.
	URL   string
	Theme Theme
	// Units is the readout distance unit; empty means millimetres.
	Units string
}

type frameMsg struct{}

// highlightMsg reports that the sample under the pointer changed.
type highlightMsg struct{}

type connectedMsg struct{ err error }

// Model is the bubbletea model of the viewer.
type Model struct {
	session *stream.Session
	view    *scope.View
	url     string
	units   string
	styles  Styles

	width, height int
	frame         scope.Frame
	help          bool
}

// NewModel returns a model drawing view, which should be attached to
// session.
func NewModel(session *stream.Session, view *scope.View, opts Options) Model {
	theme := opts.Theme
	if theme == (Theme{}) {
		theme = DefaultTheme
	}
	return Model{
		session: session,
		view:    view,
		url:     opts.URL,
		units:   opts.Units,
		styles:  NewStyles(theme),
		frame:   view.Frame(),
	}
}

func (m Model) Init() tea.Cmd {
	if m.url == "" {
		return nil
	}
	return m.connect()
}

func (m Model) connect() tea.Cmd {
	s, url := m.session, m.url
	return func() tea.Msg {
		return connectedMsg{err: s.Connect(context.Background(), url)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		cols, rows := m.plotSize()
		m.view.SetGeometry(float64(cols*2), float64(rows*4))

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case connectedMsg:
		// Failures also reach the frame through the session status.

	case frameMsg, highlightMsg:
	}
	m.frame = m.view.Frame()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "?":
		m.help = !m.help
	case "esc":
		if m.help {
			m.help = false
		} else {
			m.view.CancelDrag()
		}
	case "f":
		m.view.ResetToLive()
	case "c":
		if m.url != "" {
			cmd = m.connect()
		}
	case "d":
		m.session.Disconnect()
	case "left", "h":
		m.view.Wheel(-1, false, false)
	case "right", "l":
		m.view.Wheel(1, false, false)
	case "shift+left", "H":
		m.view.Wheel(-1, false, true)
	case "shift+right", "L":
		m.view.Wheel(1, false, true)
	}
	m.frame = m.view.Frame()
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) {
	p, inside := m.pointer(msg.X, msg.Y)
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		if !inside {
			return
		}
		dir := 1.0
		if msg.Button == tea.MouseButtonWheelUp {
			dir = -1
		}
		m.view.PointerMove(p)
		m.view.Wheel(dir, msg.Shift || msg.Ctrl, msg.Alt)
		return
	case tea.MouseButtonRight:
		if msg.Action == tea.MouseActionPress && inside {
			m.view.ResetToLive()
		}
		return
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress {
			if inside {
				m.view.PointerDown(p, msg.Ctrl || msg.Alt)
			}
			return
		}
	}

	switch msg.Action {
	case tea.MouseActionRelease:
		m.view.PointerUp(p)
	case tea.MouseActionMotion:
		if inside || m.frame.Mode == viewport.ModeDragPreview {
			m.view.PointerMove(p)
		} else {
			m.view.PointerLeave()
		}
	}
}

// pointer converts a terminal cell to plot dot coordinates, clamped to
// the plot area.
func (m Model) pointer(x, y int) (viewport.Point, bool) {
	cols, rows := m.plotSize()
	col, row := x-axisWidth, y-headerRows
	inside := col >= 0 && row >= 0 && col < cols && row < rows
	col = min(max(col, 0), cols-1)
	row = min(max(row, 0), rows-1)
	return viewport.Point{X: float64(col*2 + 1), Y: float64(row*4 + 2)}, inside
}

func (m Model) plotSize() (cols, rows int) {
	return max(m.width-axisWidth, 1), max(m.height-headerRows-footerRows, 1)
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.help {
		return m.renderHelp()
	}
	if m.frame.Total == 0 {
		return m.renderWaiting()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')
	b.WriteString(m.renderPlot())
	b.WriteString(m.renderReadout())
	return b.String()
}

func (m Model) renderHeader() string {
	f := m.frame
	left := m.styles.Title.Render("beacon scope") + " " + m.styles.Muted.Render(m.url)
	var right string
	switch f.Mode {
	case viewport.ModeLive:
		right = m.styles.Trace.Render("LIVE")
	case viewport.ModeManual:
		right = m.styles.Follow.Render("[f] follow live")
	case viewport.ModeDragPreview:
		right = m.styles.Selection.Render("ZOOM")
	}
	if f.LastError != "" {
		right = m.styles.Error.Render(f.LastError) + "  " + right
	} else if f.State != stream.StateReceiving {
		right = m.styles.Muted.Render(f.State.String()) + "  " + right
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderPlot() string {
	f := m.frame
	cols, rows := m.plotSize()
	c := NewCanvas(cols, rows)
	dotsW, dotsH := c.DotSize()
	bound := func(v float64, hi int) int {
		if math.IsNaN(v) {
			return -1
		}
		return int(math.Floor(math.Min(math.Max(v, -1), float64(hi))))
	}

	prevX, prevY, havePrev := 0, 0, false
	for _, pt := range f.Points {
		x := bound(f.XScale.Apply(pt.X), dotsW)
		y := bound(f.YScale.Apply(pt.Y), dotsH)
		if havePrev {
			c.Line(prevX, prevY, x, y)
		} else {
			c.Set(x, y)
		}
		prevX, prevY, havePrev = x, y, true
	}

	if f.Dragging {
		c.Rect(int(f.DragFrom.X)/2, int(f.DragFrom.Y)/4, int(f.DragTo.X)/2, int(f.DragTo.Y)/4, MarkSelection)
	}
	if f.Highlight.OK {
		px := f.XScale.Apply(f.Highlight.Point.X)
		py := f.YScale.Apply(f.Highlight.Point.Y)
		c.Mark(bound(px, dotsW)/2, bound(py, dotsH)/4, MarkHighlight)
	}

	// Value labels by row.
	labels := make([]string, rows)
	for _, v := range Ticks(f.Window.Y.Min, f.Window.Y.Max, max(rows/3, 2)) {
		row := bound(f.YScale.Apply(v), dotsH) / 4
		if row >= 0 && row < rows {
			labels[row] = FormatValue(v)
		}
	}

	var b strings.Builder
	rule := m.styles.Rule.Render("│")
	for row, line := range c.Lines(m.styles.Trace, m.styles.Selection, m.styles.Highlight) {
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%*s", axisWidth-1, labels[row])))
		b.WriteString(rule)
		b.WriteString(line)
		b.WriteByte('\n')
	}

	var tcols []int
	var tlabels []string
	for _, t := range TimeTicks(f.Window.X.Min, f.Window.X.Max, max(cols/14, 2)) {
		tcols = append(tcols, axisWidth+int(f.XScale.Apply(t))/2)
		tlabels = append(tlabels, FormatTime(t))
	}
	b.WriteString(m.styles.Muted.Render(placeLabels(m.width, tcols, tlabels)))
	b.WriteByte('\n')
	return b.String()
}

func (m Model) renderReadout() string {
	f := m.frame
	title, sample := TitleLast, f.Last
	if f.Highlight.OK {
		s := f.Highlight.Sample
		title, sample = TitleCursor, &s
	}

	lines := []string{
		m.styles.Title.Render(title),
		m.renderFields(SampleFields(sample, m.units)),
		m.styles.Muted.Render("window " + PlainFields(StatsFields(f.Stats))),
		m.styles.Muted.Render("? help  f follow  c reconnect  q quit"),
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderWaiting() string {
	var msg string
	switch {
	case m.frame.LastError != "":
		msg = m.styles.Error.Render("Connection error: "+m.frame.LastError) +
			"\n\n" + m.styles.Muted.Render("[c] reconnect  [q] quit")
	case m.frame.State == stream.StateIdle:
		msg = m.styles.Muted.Render("Not connected  [q] quit")
	case m.frame.State == stream.StateConnecting:
		msg = m.styles.Trace.Render("Connecting to " + m.url)
	default:
		msg = m.styles.Trace.Render("Awaiting initial data")
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}

var helpRows = [][2]string{
	{"Wheel", "Pan the time axis"},
	{"Alt + wheel", "Pan in fine steps"},
	{"Shift/Ctrl + wheel", "Zoom the time axis around the sample under the cursor"},
	{"Ctrl/Alt + drag", "Zoom to the selection"},
	{"Right click", "Reset the value axis and follow live data"},
	{"Left / Right", "Pan; with Shift, in fine steps"},
	{"f", "Follow live data"},
	{"c / d", "Reconnect / disconnect"},
	{"Esc", "Cancel a selection or close this help"},
	{"q", "Quit"},
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.styles.PanelHead.Render("Interactions"))
	b.WriteString("\n\n")
	for _, r := range helpRows {
		b.WriteString(fmt.Sprintf("%-20s %s\n", r[0], r[1]))
	}
	b.WriteString("\nIf the connection fails, check that this host is listed in\n")
	b.WriteString("cors_domains in the [authorization] section of moonraker.conf.")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.styles.Panel.Render(b.String()))
}
