package wire

import (
	"encoding/binary"
	"net"

	"github.com/arlobridge/dnsrelay/internal/dns/domain"
)

// EncodeAnswer serializes one resource record: encoded-label, rtype,
// class, ttl, rdlength, and rdata bytes, per spec.md §4.4.
func EncodeAnswer(a domain.Answer) ([]byte, error) {
	labelBytes, err := EncodeLabels(a.Name)
	if err != nil {
		return nil, err
	}
	rdlength, err := a.RDLength()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, len(labelBytes)+10+int(rdlength))
	buf = append(buf, labelBytes...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(a.Type))
	buf = binary.BigEndian.AppendUint16(buf, uint16(a.Class))
	buf = binary.BigEndian.AppendUint32(buf, a.TTL)
	buf = binary.BigEndian.AppendUint16(buf, rdlength)
	buf = append(buf, a.Data.Bytes()...)
	return buf, nil
}

// DecodeAnswer parses one resource record starting at offset within the
// full datagram, returning the parsed Answer and the cursor position
// immediately after it, per spec.md §4.4. Record types other than A are
// still parsed structurally (the rdata is carried as opaque bytes) so
// that an unexpected upstream record doesn't abort the whole response.
func DecodeAnswer(datagram []byte, offset int) (domain.Answer, int, error) {
	name, cursor, err := DecodeLabels(datagram, offset)
	if err != nil {
		return domain.Answer{}, 0, err
	}
	if cursor+10 > len(datagram) {
		return domain.Answer{}, 0, ErrTruncatedAnswer
	}

	rtype := domain.RRType(binary.BigEndian.Uint16(datagram[cursor : cursor+2]))
	class := domain.RRClass(binary.BigEndian.Uint16(datagram[cursor+2 : cursor+4]))
	ttl := binary.BigEndian.Uint32(datagram[cursor+4 : cursor+8])
	rdlength := binary.BigEndian.Uint16(datagram[cursor+8 : cursor+10])
	cursor += 10

	if cursor+int(rdlength) > len(datagram) {
		return domain.Answer{}, 0, ErrTruncatedAnswer
	}
	rdata := make([]byte, rdlength)
	copy(rdata, datagram[cursor:cursor+int(rdlength)])
	cursor += int(rdlength)

	var data domain.RData
	if rtype == domain.RRTypeA && rdlength == 4 {
		data, err = domain.NewARecordData(net.IP(rdata))
		if err != nil {
			data = domain.NewRawRecordData(rdata)
		}
	} else {
		data = domain.NewRawRecordData(rdata)
	}

	return domain.NewAnswer(name, rtype, class, ttl, data), cursor, nil
}
