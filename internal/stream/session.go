package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/banshee-data/beacon.scope/internal/beacon"
	"github.com/banshee-data/beacon.scope/internal/monitoring"
)

var logf = monitoring.Component("stream")

// maxLoggedFrame bounds how much of an unrecognized frame is logged.
const maxLoggedFrame = 256

// Options configure a Session.
type Options struct {
	Decoder          beacon.Options
	SubscriberBuffer int
}

// Session owns at most one socket at a time. Each Connect starts a new
// generation with a fresh decoder; events from older generations are never
// published after the generation ends.
type Session struct {
	dialer Dialer
	opts   Options
	bus    *Bus

	// life bounds terminal state and error events; it ends on Close.
	life context.Context
	stop context.CancelFunc

	mu         sync.Mutex
	state      State
	lastErr    error
	url        string
	header     beacon.Header
	gen        uint64
	conn       Conn
	cancel     context.CancelFunc
	readerDone chan struct{}
	// pending maps request ids sent on the current connection to their
	// method until a reply claims them.
	pending map[int64]string

	writeMu sync.Mutex
	nextID  atomic.Int64
	frames  atomic.Int64
	samples atomic.Int64
}

// NewSession returns an idle session that will dial through d.
func NewSession(d Dialer, opts Options) *Session {
	life, stop := context.WithCancel(context.Background())
	return &Session{
		dialer:  d,
		opts:    opts,
		bus:     NewBus(opts.SubscriberBuffer),
		life:    life,
		stop:    stop,
		pending: make(map[int64]string),
	}
}

// Subscribe registers for session events. See Bus.Subscribe.
func (s *Session) Subscribe(topics ...Topic) *Subscription {
	return s.bus.Subscribe(topics...)
}

// SubscribeLossy registers an observer that drops events instead of
// stalling the reader. See Bus.SubscribeLossy.
func (s *Session) SubscribeLossy(topics ...Topic) *Subscription {
	return s.bus.SubscribeLossy(topics...)
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		State:      s.state,
		URL:        s.url,
		Header:     s.header,
		Generation: s.gen,
		Frames:     s.frames.Load(),
		Samples:    s.samples.Load(),
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// URL returns the address of the last Connect call.
func (s *Session) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Done returns a channel closed when the current connection's reader exits.
// Without a connection it returns a closed channel.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readerDone == nil || !s.state.Active() {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return s.readerDone
}

// Connect tears down any live socket, dials url and requests the sample
// dump. The returned error is also recorded as the session's last error.
func (s *Session) Connect(ctx context.Context, url string) error {
	s.Disconnect()

	link, cancel := context.WithCancel(s.life)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state = StateConnecting
	s.lastErr = nil
	s.url = url
	s.header = nil
	s.cancel = cancel
	s.readerDone = nil
	clear(s.pending)
	s.mu.Unlock()
	s.frames.Store(0)
	s.samples.Store(0)

	logf("connecting to %s", url)
	s.publish(s.life, Event{Topic: TopicState, Generation: gen, State: StateConnecting})

	dialCtx, dialCancel := context.WithCancel(ctx)
	stopDial := context.AfterFunc(link, dialCancel)
	conn, err := s.dialer.Dial(dialCtx, url)
	stopDial()
	dialCancel()
	if err != nil {
		s.finish(gen, err)
		return err
	}

	done := make(chan struct{})
	s.mu.Lock()
	if s.gen != gen || s.state != StateConnecting {
		s.mu.Unlock()
		conn.Close()
		return ErrSuperseded
	}
	s.conn = conn
	s.state = StateConnected
	s.readerDone = done
	s.mu.Unlock()

	logf("connected to %s", url)
	s.publish(s.life, Event{Topic: TopicState, Generation: gen, State: StateConnected})

	if err := s.Request(beacon.MethodDump); err != nil {
		close(done)
		err = &TransportError{Code: websocket.CloseAbnormalClosure, Reason: err.Error(), Err: err}
		s.finish(gen, err)
		return err
	}

	go s.read(link, gen, conn, beacon.NewDecoder(s.opts.Decoder), done)
	return nil
}

// Disconnect closes any live socket and waits for its reader to exit. It is
// a no-op when nothing is connected and is safe to call repeatedly.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if !s.state.Active() {
		s.mu.Unlock()
		return
	}
	gen := s.gen
	conn, cancel, done := s.conn, s.cancel, s.readerDone
	s.state = StateDisconnected
	s.conn = nil
	s.header = nil
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
	if done != nil {
		<-done
	}
	logf("disconnected")
	s.publish(s.life, Event{Topic: TopicState, Generation: gen, State: StateDisconnected})
}

// Close disconnects and ends every subscription.
func (s *Session) Close() {
	s.Disconnect()
	s.stop()
	s.bus.Close()
}

// Request sends method with the next request id. Replies to it, other than
// the dump's header, are published on TopicReply.
func (s *Session) Request(method string) error {
	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		s.mu.Unlock()
		return ErrNotConnected
	}
	id := s.nextID.Add(1) - 1
	s.pending[id] = method
	s.mu.Unlock()

	payload, err := beacon.NewRequest(id, method).Encode()
	if err == nil {
		s.writeMu.Lock()
		err = conn.WriteMessage(websocket.TextMessage, payload)
		s.writeMu.Unlock()
	}
	if err != nil {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		return fmt.Errorf("failed to send %s: %w", method, err)
	}
	return nil
}

// claim removes id from the pending requests of generation gen and returns
// the method it was sent with.
func (s *Session) claim(gen uint64, id int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return "", false
	}
	method, ok := s.pending[id]
	delete(s.pending, id)
	return method, ok
}

// read decodes frames until the socket fails or the link is cancelled.
// Each frame is decoded and published as one unit.
func (s *Session) read(ctx context.Context, gen uint64, conn Conn, dec *beacon.Decoder, done chan struct{}) {
	defer close(done)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.finish(gen, classifyClose(err))
			return
		}
		s.frames.Add(1)
		s.publish(ctx, Event{Topic: TopicRaw, Generation: gen, Raw: raw})

		ev, err := dec.Decode(raw)
		if err != nil {
			logf("unrecognized frame %q: %v", truncate(raw, maxLoggedFrame), err)
			s.finish(gen, fmt.Errorf("%w: %w", ErrProtocol, err))
			return
		}

		switch ev.Kind {
		case beacon.EventHeader:
			s.mu.Lock()
			s.header = ev.Header
			s.mu.Unlock()
			s.publish(ctx, Event{Topic: TopicHeader, Generation: gen, Header: ev.Header})

		case beacon.EventSamples:
			if len(ev.Samples) == 0 {
				continue
			}
			s.samples.Add(int64(len(ev.Samples)))
			if s.advance(gen) {
				s.publish(ctx, Event{Topic: TopicState, Generation: gen, State: StateReceiving})
			}
			s.publish(ctx, Event{Topic: TopicSamples, Generation: gen, Samples: ev.Samples})

		case beacon.EventReply:
			method, ok := s.claim(gen, ev.Reply.ID)
			if !ok || method == beacon.MethodDump {
				// The dump must be answered with a header.
				err := ev.Reply.Err()
				if err == nil {
					err = fmt.Errorf("%w: unexpected reply to request %d", beacon.ErrUnrecognizedFrame, ev.Reply.ID)
				}
				logf("unexpected reply %q: %v", truncate(raw, maxLoggedFrame), err)
				s.finish(gen, fmt.Errorf("%w: %w", ErrProtocol, err))
				return
			}
			if err := ev.Reply.Err(); err != nil {
				logf("%s (id %d) failed: %v", method, ev.Reply.ID, err)
			}
			s.publish(ctx, Event{Topic: TopicReply, Generation: gen, Reply: ev.Reply, Method: method})
		}
	}
}

// advance moves a connected generation to receiving and reports whether it
// did.
func (s *Session) advance(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || s.state != StateConnected {
		return false
	}
	s.state = StateReceiving
	return true
}

// finish ends generation gen from inside the session. A nil err is a clean
// close. Only the first caller for a generation publishes anything.
func (s *Session) finish(gen uint64, err error) {
	s.mu.Lock()
	if s.gen != gen || !s.state.Active() {
		s.mu.Unlock()
		return
	}
	conn, cancel := s.conn, s.cancel
	s.state = StateDisconnected
	s.lastErr = err
	s.conn = nil
	s.header = nil
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}

	if err != nil {
		logf("session ended: %v", err)
		s.publish(s.life, Event{Topic: TopicError, Generation: gen, Err: err})
	} else {
		logf("session closed")
	}
	s.publish(s.life, Event{Topic: TopicState, Generation: gen, State: StateDisconnected, Err: err})
}

func (s *Session) publish(ctx context.Context, ev Event) {
	if err := s.bus.Publish(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		logf("dropped %s event: %v", ev.Topic, err)
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
