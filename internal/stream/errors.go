package stream

import (
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
)

var (
	// ErrProtocol wraps decoder failures that end a session.
	ErrProtocol = errors.New("protocol error")

	// ErrNotConnected is returned when sending without an open socket.
	ErrNotConnected = errors.New("not connected")

	// ErrSuperseded is returned by Connect when Disconnect or another Connect
	// won the race while the socket was being dialled.
	ErrSuperseded = errors.New("connect superseded")
)

// TransportError describes an abnormal socket closure or a failed dial.
type TransportError struct {
	Code   int
	Reason string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("error code %d", e.Code)
}

func (e *TransportError) Unwrap() error { return e.Err }

// classifyClose turns a read error into the session's terminal error. Normal
// closure, going away and a close frame without status are clean and yield
// nil.
func classifyClose(err error) error {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		switch ce.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived:
			return nil
		}
		return &TransportError{Code: ce.Code, Reason: ce.Text, Err: err}
	}
	return &TransportError{Code: websocket.CloseAbnormalClosure, Reason: err.Error(), Err: err}
}
