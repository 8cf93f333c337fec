package wire

import (
	"encoding/binary"

	"github.com/arlobridge/dnsrelay/internal/dns/domain"
)

// EncodeQuestion serializes one question section entry: encoded-label
// bytes, then qtype and qclass as big-endian u16s, per spec.md §4.3.
func EncodeQuestion(q domain.Question) ([]byte, error) {
	labelBytes, err := EncodeLabels(q.Name)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, len(labelBytes)+4)
	buf = append(buf, labelBytes...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(q.Type))
	buf = binary.BigEndian.AppendUint16(buf, uint16(q.Class))
	return buf, nil
}

// DecodeQuestion parses one question section entry starting at offset
// within the full datagram (needed for pointer resolution), returning the
// parsed Question and the cursor position immediately after it.
func DecodeQuestion(datagram []byte, offset int) (domain.Question, int, error) {
	name, cursor, err := DecodeLabels(datagram, offset)
	if err != nil {
		return domain.Question{}, 0, err
	}
	if cursor+4 > len(datagram) {
		return domain.Question{}, 0, ErrTruncatedQuestion
	}

	qtype := domain.RRType(binary.BigEndian.Uint16(datagram[cursor : cursor+2]))
	qclass := domain.RRClass(binary.BigEndian.Uint16(datagram[cursor+2 : cursor+4]))
	cursor += 4

	return domain.NewQuestion(name, qtype, qclass), cursor, nil
}
