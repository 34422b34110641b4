package beacon

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

var (
	// ErrMalformedFrame is returned when a frame is not parseable JSON even
	// after non-finite tokens have been rewritten.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrUnrecognizedFrame is returned for frames that are neither a header
	// reply nor a data frame, including rows that arrive before a header.
	ErrUnrecognizedFrame = errors.New("unrecognized frame")
)

// FrameKind classifies a parsed frame.
type FrameKind int

const (
	FrameUnrecognized FrameKind = iota
	FrameHeader
	FrameRows
	// FrameReply is any other frame that answers a request: it has an id
	// and a result or error member.
	FrameReply
)

func (k FrameKind) String() string {
	switch k {
	case FrameHeader:
		return "header"
	case FrameRows:
		return "rows"
	case FrameReply:
		return "reply"
	}
	return "unrecognized"
}

// Frame is one inbound message after JSON parsing.
type Frame struct {
	Kind FrameKind
	// ID echoes the request id on replies.
	ID    int64
	HasID bool

	Header Header
	Rows   [][]any
	Result any

	// Error carries error.message when the device rejected a request.
	Error string
}

var (
	idPath      = jp.MustParseString("$.id")
	headerPath  = jp.MustParseString("$.result.header")
	paramsPath  = jp.MustParseString("$.params")
	resultPath  = jp.MustParseString("$.result")
	errorPath   = jp.MustParseString("$.error")
	messagePath = jp.MustParseString("$.error.message")
)

// ParseFrame rewrites non-finite tokens and classifies the frame. A header
// reply wins over params when a frame somehow carries both.
func ParseFrame(raw []byte) (Frame, error) {
	data, err := oj.Parse(RewriteNonFinite(raw))
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	var f Frame
	if v := first(idPath.Get(data)); v != nil {
		if id, ok := v.(int64); ok {
			f.ID, f.HasID = id, true
		}
	}

	if v := first(headerPath.Get(data)); v != nil {
		if h, ok := toHeader(v); ok {
			f.Kind = FrameHeader
			f.Header = h
			return f, nil
		}
	}

	if v := first(paramsPath.Get(data)); v != nil {
		if rows, ok := toRows(v); ok {
			f.Kind = FrameRows
			f.Rows = rows
			return f, nil
		}
	}

	if !f.HasID {
		return f, nil
	}
	if res := resultPath.Get(data); len(res) > 0 {
		f.Kind = FrameReply
		f.Result = res[0]
	}
	if len(errorPath.Get(data)) > 0 {
		f.Kind = FrameReply
		f.Error = "request failed"
		if v, ok := first(messagePath.Get(data)).(string); ok && v != "" {
			f.Error = v
		}
	}
	return f, nil
}

func first(vs []any) any {
	if len(vs) == 0 {
		return nil
	}
	return vs[0]
}

func toHeader(v any) (Header, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	h := make(Header, len(arr))
	for i, name := range arr {
		s, ok := name.(string)
		if !ok {
			return nil, false
		}
		h[i] = s
	}
	return h, true
}

func toRows(v any) ([][]any, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	rows := make([][]any, len(arr))
	for i, r := range arr {
		row, ok := r.([]any)
		if !ok {
			return nil, false
		}
		rows[i] = row
	}
	return rows, true
}

var (
	tokInf    = []byte("Infinity")
	tokNegInf = []byte("-Infinity")
	tokNaN    = []byte("NaN")
)

// RewriteNonFinite replaces the bare tokens Infinity, -Infinity and NaN with
// the quoted sentinels "inf", "-inf" and "nan". Occurrences inside string
// literals are left alone. Input without any such token is returned as is.
func RewriteNonFinite(raw []byte) []byte {
	if !bytes.Contains(raw, tokInf) && !bytes.Contains(raw, tokNaN) {
		return raw
	}

	out := make([]byte, 0, len(raw)+16)
	inString, escaped := false, false
	for i := 0; i < len(raw); {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			out = append(out, c)
			i++
			continue
		}

		rest := raw[i:]
		switch {
		case c == '"':
			inString = true
		case bytes.HasPrefix(rest, tokNegInf):
			out = append(out, `"-inf"`...)
			i += len(tokNegInf)
			continue
		case bytes.HasPrefix(rest, tokInf):
			out = append(out, `"inf"`...)
			i += len(tokInf)
			continue
		case bytes.HasPrefix(rest, tokNaN):
			out = append(out, `"nan"`...)
			i += len(tokNaN)
			continue
		}
		out = append(out, c)
		i++
	}
	return out
}
