package wire

import (
	"encoding/binary"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/arlobridge/dnsrelay/internal/dns/domain"
)

// pointerOffsetSpace is the size of a 14-bit compression-pointer offset
// (RFC 1035 §4.1.4): the top two bits of the two-byte pointer are fixed
// to 11, leaving 14 bits of addressable offset within the datagram.
const pointerOffsetSpace = 1 << 14

// maxPointerHops bounds the number of compression-pointer jumps a single
// name resolution may take, per spec.md §4.1's recommendation, as
// defense in depth alongside the exact per-offset loop guard below.
const maxPointerHops = 128

// EncodeLabels serializes a DomainName's textual form into length-prefixed
// wire labels terminated by a zero byte, per spec.md §4.1. It never emits
// compression pointers (spec.md §1 Non-goals: name-compression emission).
func EncodeLabels(name domain.DomainName) ([]byte, error) {
	if wireBytes, ok := name.WireBytes(); ok {
		// Already in wire form (e.g. a question echoed back from the
		// request) — re-emit verbatim rather than re-encoding from text.
		return wireBytes, nil
	}

	text := name.String()
	if text == "" {
		return []byte{0}, nil
	}

	labels := strings.Split(text, ".")
	buf := make([]byte, 0, len(text)+len(labels)+1)
	for _, label := range labels {
		if len(label) == 0 || len(label) > 63 {
			return nil, ErrLabelTooLong
		}
		buf = append(buf, byte(len(label)))
		buf = append(buf, label...)
	}
	buf = append(buf, 0)
	return buf, nil
}

// DecodeLabels decodes a domain name starting at offset within the full
// datagram, resolving any chain of compression pointers to inline bytes,
// per spec.md §4.1. It returns the decoded wire-form DomainName and the
// cursor position immediately following the name as it appears in the
// datagram at offset (i.e. not counting bytes read after following a
// pointer — a pointer always ends the current name, spec.md §4.1).
func DecodeLabels(datagram []byte, offset int) (domain.DomainName, int, error) {
	visited := bitset.New(pointerOffsetSpace)
	hops := 0
	wireBytes, next, err := decodeLabelsAt(datagram, offset, visited, &hops)
	if err != nil {
		return domain.DomainName{}, 0, err
	}
	return domain.NewWireDomainName(wireBytes), next, nil
}

// decodeLabelsAt performs one cursor-relative decode pass, recursing into
// itself at the pointer's target when a compression pointer is hit. The
// visited bitset is shared across the whole recursive resolution of one
// name so that a pointer can never be followed twice, which both
// resolves spec.md §9 open question 2 (absolute offsets) and gives exact,
// false-positive-free loop detection.
func decodeLabelsAt(datagram []byte, offset int, visited *bitset.BitSet, hops *int) ([]byte, int, error) {
	var accum []byte
	cursor := offset

	for {
		if cursor >= len(datagram) {
			return nil, 0, ErrOffsetOutOfBounds
		}
		b := datagram[cursor]

		switch b & 0xC0 {
		case 0x00: // length-prefixed label (00xxxxxx)
			if b == 0 {
				accum = append(accum, 0)
				cursor++
				return accum, cursor, nil
			}
			length := int(b)
			if cursor+1+length > len(datagram) {
				return nil, 0, ErrTruncatedLabel
			}
			accum = append(accum, datagram[cursor:cursor+1+length]...)
			cursor += 1 + length

		case 0xC0: // compression pointer (11xxxxxx xxxxxxxx)
			if cursor+2 > len(datagram) {
				return nil, 0, ErrOffsetOutOfBounds
			}
			ptr := int(binary.BigEndian.Uint16(datagram[cursor:cursor+2]) & 0x3FFF)
			if ptr >= cursor {
				return nil, 0, ErrPointerBackward
			}
			*hops++
			if *hops > maxPointerHops || visited.Test(uint(ptr)) {
				return nil, 0, ErrPointerLoop
			}
			visited.Set(uint(ptr))

			suffix, _, err := decodeLabelsAt(datagram, ptr, visited, hops)
			if err != nil {
				return nil, 0, err
			}
			accum = append(accum, suffix...)
			cursor += 2
			return accum, cursor, nil

		default: // 01xxxxxx or 10xxxxxx are reserved
			return nil, 0, ErrReservedLabelBits
		}
	}
}
