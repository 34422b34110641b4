package stream

import (
	"github.com/banshee-data/beacon.scope/internal/beacon"
)

// State is the connection lifecycle state.
type State int

const (
	StateIdle State = iota
	StateConnecting
	// StateConnected means the socket is open and the header is pending.
	StateConnected
	// StateReceiving means samples are flowing.
	StateReceiving
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReceiving:
		return "receiving"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Active reports whether a socket is owned in this state.
func (s State) Active() bool {
	return s == StateConnecting || s == StateConnected || s == StateReceiving
}

// Status is a point-in-time view of a session.
type Status struct {
	State      State         `json:"state"`
	LastError  string        `json:"last_error,omitempty"`
	URL        string        `json:"url,omitempty"`
	Header     beacon.Header `json:"header,omitempty"`
	Generation uint64        `json:"generation"`
	Frames     int64         `json:"frames"`
	Samples    int64         `json:"samples"`
}
