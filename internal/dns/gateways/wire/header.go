package wire

import (
	"encoding/binary"

	"github.com/arlobridge/dnsrelay/internal/dns/domain"
)

// HeaderSize is the fixed length, in bytes, of a DNS message header.
const HeaderSize = 12

// DecodeHeader parses the fixed 12-byte DNS header from the front of
// data, per spec.md §4.2.
func DecodeHeader(data []byte) (domain.Header, error) {
	if len(data) < HeaderSize {
		return domain.Header{}, ErrHeaderTooShort
	}

	b2 := data[2]
	b3 := data[3]

	h := domain.Header{
		ID:      binary.BigEndian.Uint16(data[0:2]),
		QR:      (b2 >> 7) & 0x01,
		Opcode:  (b2 >> 3) & 0x0F,
		AA:      (b2 >> 2) & 0x01,
		TC:      (b2 >> 1) & 0x01,
		RD:      b2 & 0x01,
		RA:      (b3 >> 7) & 0x01,
		Z:       (b3 >> 4) & 0x07,
		RCode:   domain.RCode(b3 & 0x0F),
		QDCount: binary.BigEndian.Uint16(data[4:6]),
		ANCount: binary.BigEndian.Uint16(data[6:8]),
		NSCount: binary.BigEndian.Uint16(data[8:10]),
		ARCount: binary.BigEndian.Uint16(data[10:12]),
	}
	return h, nil
}

// EncodeHeader serializes a Header back into its fixed 12-byte wire form,
// per spec.md §4.2. Subfields exceeding their declared bit width are
// masked rather than rejected, matching the "encoder MAY mask" option the
// spec allows.
func EncodeHeader(h domain.Header) []byte {
	buf := make([]byte, HeaderSize)

	binary.BigEndian.PutUint16(buf[0:2], h.ID)

	buf[2] = ((h.QR & 0x01) << 7) |
		((h.Opcode & 0x0F) << 3) |
		((h.AA & 0x01) << 2) |
		((h.TC & 0x01) << 1) |
		(h.RD & 0x01)

	buf[3] = ((h.RA & 0x01) << 7) |
		((h.Z & 0x07) << 4) |
		(uint8(h.RCode) & 0x0F)

	binary.BigEndian.PutUint16(buf[4:6], h.QDCount)
	binary.BigEndian.PutUint16(buf[6:8], h.ANCount)
	binary.BigEndian.PutUint16(buf[8:10], h.NSCount)
	binary.BigEndian.PutUint16(buf[10:12], h.ARCount)

	return buf
}
