package domain

import (
	"fmt"
	"strings"
)

// DomainName is a logical domain name with two concrete representations,
// matching spec.md §9's "dynamic name representation" re-architected
// pattern: a name synthesized by this process (Text) and a name that was
// just decoded from a datagram, already in length-prefixed wire layout
// with any compression pointers resolved to inline bytes (Wire). Keeping
// the decoded form as pre-encoded bytes means the server can re-emit an
// echoed question without re-encoding it from text.
type DomainName struct {
	text string
	wire []byte
}

// NewTextDomainName builds a DomainName from dot-separated textual labels.
// A trailing dot is tolerated and stripped; the empty string denotes the
// root name.
func NewTextDomainName(name string) DomainName {
	return DomainName{text: strings.TrimSuffix(name, ".")}
}

// NewWireDomainName builds a DomainName from an already length-prefixed,
// pointer-resolved wire byte sequence (as produced by wire.DecodeLabels).
func NewWireDomainName(wire []byte) DomainName {
	return DomainName{wire: wire}
}

// String returns the dot-separated textual form of the name.
func (d DomainName) String() string {
	if d.wire != nil {
		return wireLabelsToText(d.wire)
	}
	return d.text
}

// IsWire reports whether this name carries a pre-encoded wire form.
func (d DomainName) IsWire() bool {
	return d.wire != nil
}

// WireBytes returns the pre-encoded wire form, if present.
func (d DomainName) WireBytes() ([]byte, bool) {
	return d.wire, d.wire != nil
}

// wireLabelsToText decodes a length-prefixed, zero-terminated label
// sequence (no pointers — pointers are already resolved by the time a
// DomainName carries a wire form) back into dotted text, for logging and
// equality comparisons.
func wireLabelsToText(wire []byte) string {
	var labels []string
	i := 0
	for i < len(wire) {
		l := int(wire[i])
		if l == 0 {
			break
		}
		i++
		if i+l > len(wire) {
			break
		}
		labels = append(labels, string(wire[i:i+l]))
		i += l
	}
	return strings.Join(labels, ".")
}

// Equal reports whether two DomainName values denote the same textual
// name, regardless of representation.
func (d DomainName) Equal(other DomainName) bool {
	return d.String() == other.String()
}

// Validate checks that every label is within the 1-63 byte bound required
// by the wire format. The root name (empty) is always valid.
func (d DomainName) Validate() error {
	name := d.String()
	if name == "" {
		return nil
	}
	for _, label := range strings.Split(name, ".") {
		if len(label) == 0 || len(label) > 63 {
			return fmt.Errorf("label %q out of range (1-63 bytes)", label)
		}
	}
	return nil
}
