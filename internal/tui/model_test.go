package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/beacon.scope/internal/beacon"
	"github.com/banshee-data/beacon.scope/internal/monitoring"
	"github.com/banshee-data/beacon.scope/internal/scope"
	"github.com/banshee-data/beacon.scope/internal/stream"
	"github.com/banshee-data/beacon.scope/internal/timeutil"
	"github.com/banshee-data/beacon.scope/internal/viewport"
)

func init() {
	monitoring.SetLogger(nil)
}

// newModel returns a model with an 80x20 cell plot showing one sample per
// second over ten seconds: 62.5 ms per dot horizontally.
func newModel(t *testing.T) (Model, *scope.View) {
	t.Helper()
	clock := timeutil.NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	view := scope.NewView(clock, scope.DefaultOptions())
	session := stream.NewSession(stream.NewMockDialer(), stream.Options{})
	t.Cleanup(session.Close)

	var batch []beacon.Sample
	for i := 0; i <= 10; i++ {
		batch = append(batch, beacon.Sample{Time: float64(i), Dist: 2.75})
	}

	m := NewModel(session, view, Options{})
	m = update(t, m, tea.WindowSizeMsg{Width: axisWidth + 80, Height: headerRows + 20 + footerRows})
	view.Ingest(batch)
	m = update(t, m, frameMsg{})
	return m, view
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func mouse(x, y int, button tea.MouseButton, action tea.MouseAction) tea.MouseMsg {
	return tea.MouseMsg{X: axisWidth + x, Y: headerRows + y, Button: button, Action: action}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelLiveFrame(t *testing.T) {
	m, _ := newModel(t)
	assert.Equal(t, viewport.ModeLive, m.frame.Mode)
	assert.Equal(t, viewport.Range{Min: 0, Max: 10000}, m.frame.Window.X)
	assert.Len(t, m.frame.Points, 11)

	out := m.View()
	assert.Contains(t, out, "LIVE")
	assert.Contains(t, out, TitleLast)
	assert.Contains(t, out, "Dist 2.7500")
	assert.Contains(t, out, "10.000")
}

func TestModelWheelPans(t *testing.T) {
	m, _ := newModel(t)
	m = update(t, m, mouse(40, 10, tea.MouseButtonWheelDown, tea.MouseActionPress))
	assert.Equal(t, viewport.ModeManual, m.frame.Mode)
	assert.Equal(t, viewport.Range{Min: 500, Max: 10500}, m.frame.Window.X)
	assert.Contains(t, m.View(), "[f] follow live")

	alt := mouse(40, 10, tea.MouseButtonWheelUp, tea.MouseActionPress)
	alt.Alt = true
	m = update(t, m, alt)
	assert.Equal(t, viewport.Range{Min: 400, Max: 10400}, m.frame.Window.X)

	m = update(t, m, key("f"))
	assert.Equal(t, viewport.ModeLive, m.frame.Mode)
}

func TestModelWheelOutsidePlotIgnored(t *testing.T) {
	m, _ := newModel(t)
	m = update(t, m, tea.MouseMsg{X: 2, Y: 5, Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	assert.Equal(t, viewport.ModeLive, m.frame.Mode)
}

func TestModelShiftWheelZoomsAroundHoveredSample(t *testing.T) {
	m, _ := newModel(t)
	// Column 40 is dot 81, 5062.5 ms: nearest sample is t=5 s at dot 80.
	zoom := mouse(40, 10, tea.MouseButtonWheelUp, tea.MouseActionPress)
	zoom.Shift = true
	m = update(t, m, zoom)

	require.Equal(t, viewport.ModeManual, m.frame.Mode)
	assert.InDelta(t, 5000-5000/1.1, m.frame.Window.X.Min, 1e-6)
	assert.InDelta(t, 10000/1.1, m.frame.Window.X.Span(), 1e-6)
}

func TestModelCtrlDragZooms(t *testing.T) {
	m, _ := newModel(t)
	press := mouse(10, 2, tea.MouseButtonLeft, tea.MouseActionPress)
	press.Ctrl = true
	m = update(t, m, press)
	m = update(t, m, mouse(50, 15, tea.MouseButtonLeft, tea.MouseActionMotion))
	assert.True(t, m.frame.Dragging)
	assert.Equal(t, viewport.ModeDragPreview, m.frame.Mode)

	m = update(t, m, mouse(50, 15, tea.MouseButtonNone, tea.MouseActionRelease))
	assert.False(t, m.frame.Dragging)
	assert.Equal(t, viewport.ModeManual, m.frame.Mode)
	// Dots 21..101 of 160 horizontally, 10..62 of 80 vertically.
	assert.InDelta(t, 1312.5, m.frame.Window.X.Min, 1e-6)
	assert.InDelta(t, 6312.5, m.frame.Window.X.Max, 1e-6)
	assert.InDelta(t, 1.2375, m.frame.Window.Y.Min, 1e-6)
	assert.InDelta(t, 4.8125, m.frame.Window.Y.Max, 1e-6)

	m = update(t, m, mouse(20, 5, tea.MouseButtonRight, tea.MouseActionPress))
	assert.Equal(t, viewport.ModeLive, m.frame.Mode)
	assert.Equal(t, viewport.Range{Min: 0, Max: 5.5}, m.frame.Window.Y)
}

func TestModelEscCancelsDrag(t *testing.T) {
	m, _ := newModel(t)
	press := mouse(10, 2, tea.MouseButtonLeft, tea.MouseActionPress)
	press.Alt = true
	m = update(t, m, press)
	m = update(t, m, mouse(30, 8, tea.MouseButtonLeft, tea.MouseActionMotion))
	require.True(t, m.frame.Dragging)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.frame.Dragging)
	assert.Equal(t, viewport.ModeLive, m.frame.Mode)
}

func TestModelHoverReadout(t *testing.T) {
	m, _ := newModel(t)
	// t=5 s sits at dot (80, 40), cell (40, 10).
	m = update(t, m, mouse(40, 10, tea.MouseButtonNone, tea.MouseActionMotion))
	require.True(t, m.frame.Highlight.OK)
	assert.Equal(t, 5.0, m.frame.Highlight.Sample.Time)
	assert.Contains(t, m.View(), TitleCursor)

	m = update(t, m, tea.MouseMsg{X: 0, Y: 0, Button: tea.MouseButtonNone, Action: tea.MouseActionMotion})
	assert.False(t, m.frame.Highlight.OK)
	assert.Contains(t, m.View(), TitleLast)
}

func TestModelKeys(t *testing.T) {
	m, _ := newModel(t)

	m = update(t, m, key("?"))
	assert.True(t, m.help)
	assert.Contains(t, m.View(), "Interactions")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.help)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, viewport.Range{Min: 500, Max: 10500}, m.frame.Window.X)

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModelWaitingScreens(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	view := scope.NewView(clock, scope.DefaultOptions())
	session := stream.NewSession(stream.NewMockDialer(), stream.Options{})
	t.Cleanup(session.Close)

	m := NewModel(session, view, Options{URL: "ws://printer.local:7125/websocket"})
	require.NotNil(t, m.Init())
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, m.View(), "Not connected")

	view.Handle(stream.Event{Topic: stream.TopicState, Generation: 1, State: stream.StateConnecting})
	m = update(t, m, frameMsg{})
	assert.Contains(t, m.View(), "Connecting to ws://printer.local:7125/websocket")

	view.Handle(stream.Event{Topic: stream.TopicState, Generation: 1, State: stream.StateConnected})
	m = update(t, m, frameMsg{})
	assert.Contains(t, m.View(), "Awaiting initial data")
}
