package domain

import (
	"fmt"
	"net"
)

// RData is the tagged variant of resource-record data. Per spec.md §3 the
// only defined case in this implementation is an IPv4 address (A record);
// anything else is carried as an opaque byte blob so it can still be
// re-emitted verbatim (e.g. an unexpected rtype echoed back from an
// upstream response).
type RData struct {
	A    net.IP // 4-byte IPv4 address, set when Type == RRTypeA
	Raw  []byte // raw rdata bytes for any other type
	IsA  bool
}

// NewARecordData builds rdata for an A record from a 4-byte IPv4 address.
func NewARecordData(ip net.IP) (RData, error) {
	v4 := ip.To4()
	if v4 == nil {
		return RData{}, fmt.Errorf("not an IPv4 address: %v", ip)
	}
	return RData{A: v4, IsA: true}, nil
}

// NewRawRecordData wraps an opaque rdata byte sequence.
func NewRawRecordData(raw []byte) RData {
	return RData{Raw: raw}
}

// Bytes returns the wire-format rdata bytes.
func (r RData) Bytes() []byte {
	if r.IsA {
		return r.A
	}
	return r.Raw
}

// Answer is a single resource record as returned in the answer section of
// a DNS response.
type Answer struct {
	Name  DomainName
	Type  RRType
	Class RRClass
	TTL   uint32
	Data  RData
}

// NewAnswer constructs an Answer resource record.
func NewAnswer(name DomainName, rtype RRType, class RRClass, ttl uint32, data RData) Answer {
	return Answer{Name: name, Type: rtype, Class: class, TTL: ttl, Data: data}
}

// RDLength returns the length, in bytes, of the rdata this record carries.
func (a Answer) RDLength() (uint16, error) {
	n := len(a.Data.Bytes())
	if n > 0xFFFF {
		return 0, fmt.Errorf("rdata too large: %d bytes", n)
	}
	return uint16(n), nil
}
