package beacon

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrHeaderChanged is returned when a second header reply disagrees with the
// one already established for the session.
var ErrHeaderChanged = fmt.Errorf("%w: header changed mid-session", ErrUnrecognizedFrame)

// ErrDeviceError wraps an error reply from the device.
var ErrDeviceError = errors.New("device error")

// EventKind says what a decoded frame produced.
type EventKind int

const (
	EventNone EventKind = iota
	EventHeader
	EventSamples
	EventReply
)

// Reply answers a request by id. Exactly one of Result and Error is set,
// except that a result may itself be null.
type Reply struct {
	ID     int64  `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Err returns the device's rejection wrapped in ErrDeviceError, or nil.
func (r Reply) Err() error {
	if r.Error == "" {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrDeviceError, r.Error)
}

// Event is the result of feeding one frame to a Decoder.
type Event struct {
	Kind    EventKind
	Header  Header
	Samples []Sample
	Reply   Reply
}

// Options tune sentinel handling.
type Options struct {
	// LegacyNegativeInfinity decodes -Infinity as +Inf.
	LegacyNegativeInfinity bool
}

// Decoder holds the per-session decoding state: the header and the time
// base used to rebase sample times. It is not safe for concurrent use.
type Decoder struct {
	opts Options

	header   Header
	baseTime float64
	hasBase  bool
}

// NewDecoder returns a decoder with no header.
func NewDecoder(opts Options) *Decoder {
	return &Decoder{opts: opts}
}

// Header returns the established header, or nil before the dump reply.
func (d *Decoder) Header() Header {
	return d.header
}

// Reset forgets the header and time base for a new session.
func (d *Decoder) Reset() {
	d.header = nil
	d.baseTime = 0
	d.hasBase = false
}

// Decode parses one text frame. A repeated identical header yields
// EventNone. Replies that carry no header come back as EventReply; whether
// one is expected is up to the caller, which knows the ids it issued. Rows
// before a header and any other frame shape are errors wrapping
// ErrUnrecognizedFrame.
func (d *Decoder) Decode(raw []byte) (Event, error) {
	f, err := ParseFrame(raw)
	if err != nil {
		return Event{}, err
	}

	switch f.Kind {
	case FrameHeader:
		if d.header != nil {
			if slices.Equal(d.header, f.Header) {
				return Event{}, nil
			}
			return Event{}, ErrHeaderChanged
		}
		d.header = f.Header
		return Event{Kind: EventHeader, Header: f.Header}, nil

	case FrameRows:
		if d.header == nil {
			return Event{}, fmt.Errorf("%w: rows before header", ErrUnrecognizedFrame)
		}
		samples := make([]Sample, 0, len(f.Rows))
		for _, row := range f.Rows {
			s := d.header.sample(row, d.opts.LegacyNegativeInfinity)
			d.rebase(&s)
			samples = append(samples, s)
		}
		return Event{Kind: EventSamples, Samples: samples}, nil

	case FrameReply:
		return Event{Kind: EventReply, Reply: Reply{ID: f.ID, Result: f.Result, Error: f.Error}}, nil
	}
	return Event{}, ErrUnrecognizedFrame
}

// rebase shifts time so the first finite time of the session reads zero.
func (d *Decoder) rebase(s *Sample) {
	if math.IsNaN(s.Time) || math.IsInf(s.Time, 0) {
		return
	}
	if !d.hasBase {
		d.baseTime = s.Time
		d.hasBase = true
	}
	s.Time -= d.baseTime
}
