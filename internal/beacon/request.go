package beacon

import "encoding/json"

// MethodDump asks the device to stream samples to this connection.
const MethodDump = "beacon/dump"

// Request is an outbound JSON-RPC style call.
type Request struct {
	ID     int64          `json:"id"`
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

// NewRequest builds a request without params.
func NewRequest(id int64, method string) Request {
	return Request{ID: id, Method: method}
}

// Encode serialises the request as a single text frame.
func (r Request) Encode() ([]byte, error) {
	return json.Marshal(r)
}
