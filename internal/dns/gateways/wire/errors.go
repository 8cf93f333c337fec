// Package wire implements the DNS wire-format codec: label compression,
// the fixed 12-byte header, question/answer sections, and whole-message
// parse/serialize, as described in RFC 1035 and scoped down to what this
// relay needs (a single question type, A records, no EDNS).
package wire

import "errors"

// Decode-side errors (spec.md §7's ParseError taxonomy).
var (
	ErrHeaderTooShort    = errors.New("dns wire: header requires 12 bytes")
	ErrOffsetOutOfBounds = errors.New("dns wire: offset out of bounds")
	ErrLabelTooLong      = errors.New("dns wire: label exceeds 63 bytes")
	ErrTruncatedLabel    = errors.New("dns wire: truncated label")
	ErrReservedLabelBits = errors.New("dns wire: reserved label length bits (01/10)")
	ErrPointerBackward   = errors.New("dns wire: compression pointer must reference an earlier offset")
	ErrPointerLoop       = errors.New("dns wire: compression pointer loop detected")
	ErrTruncatedQuestion = errors.New("dns wire: truncated question section")
	ErrTruncatedAnswer   = errors.New("dns wire: truncated answer section")
)

// ErrEncodeMisuse is spec.md §7's EncodeMisuse: an attempt to serialize a
// Request-form Message as if it were a Response.
var ErrEncodeMisuse = errors.New("dns wire: cannot serialize a request-form message as a response")
