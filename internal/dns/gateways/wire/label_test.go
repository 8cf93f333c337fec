package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlobridge/dnsrelay/internal/dns/domain"
)

func encodeName(labels ...string) []byte {
	var buf []byte
	for _, l := range labels {
		buf = append(buf, byte(len(l)))
		buf = append(buf, l...)
	}
	buf = append(buf, 0)
	return buf
}

func TestEncodeLabelsFromText(t *testing.T) {
	out, err := EncodeLabels(domain.NewTextDomainName("codecrafters.io"))
	require.NoError(t, err)
	assert.Equal(t, encodeName("codecrafters", "io"), out)
}

func TestEncodeLabelsRoot(t *testing.T) {
	out, err := EncodeLabels(domain.NewTextDomainName(""))
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, out)
}

func TestEncodeLabelsRejectsOversizedLabel(t *testing.T) {
	oversized := make([]byte, 64)
	for i := range oversized {
		oversized[i] = 'a'
	}
	_, err := EncodeLabels(domain.NewTextDomainName(string(oversized)))
	assert.ErrorIs(t, err, ErrLabelTooLong)
}

func TestEncodeLabelsReemitsWireFormVerbatim(t *testing.T) {
	wireBytes := encodeName("example", "com")
	name := domain.NewWireDomainName(wireBytes)
	out, err := EncodeLabels(name)
	require.NoError(t, err)
	assert.Equal(t, wireBytes, out)
}

func TestDecodeLabelsUncompressed(t *testing.T) {
	datagram := encodeName("codecrafters", "io")
	name, next, err := DecodeLabels(datagram, 0)
	require.NoError(t, err)
	assert.Equal(t, "codecrafters.io", name.String())
	assert.Equal(t, len(datagram), next)
}

func TestDecodeLabelsFollowsCompressionPointer(t *testing.T) {
	// datagram: [0]="abc.com\0" at offset 0, then a second name "xyz" that
	// points back at offset 0 for its "abc.com" suffix.
	base := encodeName("abc", "com")
	datagram := append([]byte{}, base...)
	ptrOffset := len(datagram)
	datagram = append(datagram, 3, 'x', 'y', 'z')
	datagram = append(datagram, 0xC0, byte(0)) // pointer to offset 0

	name, next, err := DecodeLabels(datagram, ptrOffset)
	require.NoError(t, err)
	assert.Equal(t, "xyz.abc.com", name.String())
	assert.Equal(t, len(datagram), next, "cursor stops right after the 2-byte pointer")
}

func TestDecodeLabelsRejectsForwardPointer(t *testing.T) {
	datagram := []byte{0xC0, 0x05, 0, 0, 0, 0}
	_, _, err := DecodeLabels(datagram, 0)
	assert.ErrorIs(t, err, ErrPointerBackward)
}

func TestDecodeLabelsRejectsPointerLoop(t *testing.T) {
	// Label "a" at offset 0, then a pointer at offset 2 back to offset 0.
	// The pointer is backward, so it is followed; re-reading from offset 0
	// reaches the same pointer again, and the second visit to offset 0 is
	// reported as a loop.
	datagram := []byte{1, 'a', 0xC0, 0x00}
	_, _, err := DecodeLabels(datagram, 0)
	assert.ErrorIs(t, err, ErrPointerLoop)
}

func TestDecodeLabelsRejectsReservedBits(t *testing.T) {
	datagram := []byte{0x40, 0x00}
	_, _, err := DecodeLabels(datagram, 0)
	assert.ErrorIs(t, err, ErrReservedLabelBits)
}

func TestDecodeLabelsRejectsTruncatedLabel(t *testing.T) {
	datagram := []byte{5, 'a', 'b'}
	_, _, err := DecodeLabels(datagram, 0)
	assert.ErrorIs(t, err, ErrTruncatedLabel)
}

func TestDecodeLabelsRejectsOutOfBoundsOffset(t *testing.T) {
	_, _, err := DecodeLabels([]byte{0}, 5)
	assert.ErrorIs(t, err, ErrOffsetOutOfBounds)
}

func TestLabelRoundTrip(t *testing.T) {
	for _, name := range []string{"codecrafters.io", "example.com", "a.b.c.example", ""} {
		encoded, err := EncodeLabels(domain.NewTextDomainName(name))
		require.NoError(t, err)
		decoded, next, err := DecodeLabels(encoded, 0)
		require.NoError(t, err)
		assert.Equal(t, name, decoded.String())
		assert.Equal(t, len(encoded), next)
	}
}
