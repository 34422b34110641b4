package scope

import (
	"sync"
	"time"

	"github.com/banshee-data/beacon.scope/internal/timeutil"
)

// Loop calls a function on every tick of a clock until stopped. It stands in
// for an animation frame callback.
type Loop struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartLoop begins calling fn every interval.
func StartLoop(clock timeutil.Clock, interval time.Duration, fn func(time.Time)) *Loop {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	l := &Loop{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	ticker := clock.NewTicker(interval)
	go func() {
		defer close(l.done)
		defer ticker.Stop()
		for {
			select {
			case <-l.stop:
				return
			case t := <-ticker.C():
				select {
				case <-l.stop:
					return
				default:
				}
				fn(t)
			}
		}
	}()
	return l
}

// Stop cancels the loop and waits for an in-flight call to return. Only
// the first call does anything; fn is never called after Stop returns.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

// Done is closed once the loop has exited.
func (l *Loop) Done() <-chan struct{} { return l.done }
