package stream

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/gorilla/websocket"
)

type mockFrame struct {
	data []byte
	err  error
}

// MockConn implements Conn for testing. Frames queued with Push are returned
// by ReadMessage in order; Fail queues a read error behind them.
type MockConn struct {
	in     chan mockFrame
	closed chan struct{}
	once   sync.Once

	mu      sync.Mutex
	written [][]byte

	// WriteError is returned by WriteMessage if set.
	WriteError error
	// OnWrite, if set, is called after every successful write.
	OnWrite func(data []byte)
}

// NewMockConn returns an open mock connection.
func NewMockConn() *MockConn {
	return &MockConn{
		in:     make(chan mockFrame, 256),
		closed: make(chan struct{}),
	}
}

// Push queues an inbound text frame.
func (m *MockConn) Push(frame string) {
	m.in <- mockFrame{data: []byte(frame)}
}

// Fail queues a read error, for example a *websocket.CloseError.
func (m *MockConn) Fail(err error) {
	m.in <- mockFrame{err: err}
}

// CloseWith queues a close frame with the given code and reason.
func (m *MockConn) CloseWith(code int, reason string) {
	m.Fail(&websocket.CloseError{Code: code, Text: reason})
}

func (m *MockConn) ReadMessage() (int, []byte, error) {
	select {
	case <-m.closed:
		return 0, nil, net.ErrClosed
	default:
	}
	select {
	case f := <-m.in:
		if f.err != nil {
			return 0, nil, f.err
		}
		return websocket.TextMessage, f.data, nil
	case <-m.closed:
		return 0, nil, net.ErrClosed
	}
}

func (m *MockConn) WriteMessage(_ int, data []byte) error {
	if m.IsClosed() {
		return net.ErrClosed
	}
	if m.WriteError != nil {
		return m.WriteError
	}
	m.mu.Lock()
	m.written = append(m.written, append([]byte(nil), data...))
	hook := m.OnWrite
	m.mu.Unlock()
	if hook != nil {
		hook(data)
	}
	return nil
}

func (m *MockConn) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}

// IsClosed reports whether Close was called.
func (m *MockConn) IsClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

// Written returns a copy of every frame written so far.
func (m *MockConn) Written() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.written))
	copy(out, m.written)
	return out
}

// MockDialer hands out queued connections in order, or Err when set.
type MockDialer struct {
	mu    sync.Mutex
	conns []*MockConn
	urls  []string

	Err error
}

// NewMockDialer returns a dialer that will hand out conns in order.
func NewMockDialer(conns ...*MockConn) *MockDialer {
	return &MockDialer{conns: conns}
}

var errNoMockConn = errors.New("mock dialer has no connection queued")

func (d *MockDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.urls = append(d.urls, url)
	if d.Err != nil {
		return nil, d.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(d.conns) == 0 {
		return nil, errNoMockConn
	}
	c := d.conns[0]
	d.conns = d.conns[1:]
	return c, nil
}

// URLs returns every url passed to Dial.
func (d *MockDialer) URLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.urls...)
}
