package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/beacon.scope/internal/viewport"
)

func TestForwardHighlights(t *testing.T) {
	m, view := newModel(t)
	sent := make(chan tea.Msg, 4)
	stop := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		forwardHighlights(view.Highlights(), stop, func(msg tea.Msg) { sent <- msg })
		close(exited)
	}()

	// t=5 s sits at dot (81, 42).
	view.PointerMove(viewport.Point{X: 81, Y: 42})

	var msg tea.Msg
	select {
	case msg = <-sent:
	case <-time.After(time.Second):
		t.Fatal("highlight change was not forwarded")
	}
	require.IsType(t, highlightMsg{}, msg)

	m = update(t, m, msg)
	require.True(t, m.frame.Highlight.OK)
	assert.Equal(t, 5.0, m.frame.Highlight.Sample.Time)
	assert.Contains(t, m.View(), TitleCursor)

	close(stop)
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("forwarder did not stop")
	}
}
