package domain

import "fmt"

// RRType represents a DNS resource record type (e.g. A, AAAA, MX).
// See IANA DNS Parameters for assigned codes. This implementation only
// resolves and serves RRTypeA; other values are recognized for wire
// fidelity (so a question of any type can still be echoed back) but are
// never matched against rdata.
type RRType uint16

// DNS Resource Record Type constants actually referenced by this server.
const (
	RRTypeA RRType = 1 // A - IPv4 address
)

// String returns the textual representation of the RRType.
func (t RRType) String() string {
	switch t {
	case RRTypeA:
		return "A"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint16(t))
	}
}
