package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/banshee-data/beacon.scope/internal/hittest"
	"github.com/banshee-data/beacon.scope/internal/scope"
	"github.com/banshee-data/beacon.scope/internal/stream"
	"github.com/banshee-data/beacon.scope/internal/timeutil"
)

// DefaultFrameInterval is the repaint period.
const DefaultFrameInterval = 33 * time.Millisecond

// RunOptions configure Run.
type RunOptions struct {
	Options
	Clock         timeutil.Clock
	FrameInterval time.Duration
}

// Run shows the viewer until the user quits or ctx is cancelled. The view
// is attached to session for the duration.
func Run(ctx context.Context, session *stream.Session, view *scope.View, opts RunOptions) error {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	view.Attach(session)
	defer view.Detach()

	p := tea.NewProgram(NewModel(session, view, opts.Options),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	loop := scope.StartLoop(opts.Clock, opts.FrameInterval, func(time.Time) {
		p.Send(frameMsg{})
	})
	defer loop.Stop()

	stop := make(chan struct{})
	defer close(stop)
	go forwardHighlights(view.Highlights(), stop, p.Send)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// forwardHighlights repaints as soon as the hit test changes instead of
// waiting for the next frame tick.
func forwardHighlights(src <-chan hittest.Result, stop <-chan struct{}, send func(tea.Msg)) {
	for {
		select {
		case <-src:
			send(highlightMsg{})
		case <-stop:
			return
		}
	}
}
