package domain

import "fmt"

// RRClass represents a DNS class (usually IN for Internet).
type RRClass uint16

const (
	RRClassIN RRClass = 1 // IN - Internet
)

// String returns the textual representation of the RRClass.
func (c RRClass) String() string {
	switch c {
	case RRClassIN:
		return "IN"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint16(c))
	}
}
