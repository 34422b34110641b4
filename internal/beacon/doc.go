// Package beacon decodes the Beacon sample stream served by Klipper's API
// socket.
//
// The device speaks JSON frames with two shapes of interest: a reply to the
// dump request carrying the field header,
//
//	{"id": 0, "result": {"header": ["time", "dist", ...]}}
//
// and asynchronous data frames whose rows line up positionally with that
// header,
//
//	{"params": [[12.5, 1.02, ...], [12.51, Infinity, ...]]}
//
// Python's encoder writes non-finite floats as the bare tokens Infinity,
// -Infinity and NaN, which are not valid JSON. RewriteNonFinite turns them into
// quoted sentinels before parsing and the row conversion maps the sentinels
// back to IEEE values.
package beacon
