package domain

import (
	"net"
	"testing"
)

func TestHeaderValidate(t *testing.T) {
	tests := []struct {
		name        string
		header      Header
		expectError bool
	}{
		{
			name:   "zero value header is valid",
			header: Header{},
		},
		{
			name:   "fully populated in-range header is valid",
			header: Header{ID: 1234, QR: 1, Opcode: 0, AA: 0, TC: 0, RD: 1, RA: 1, Z: 0, RCode: RCodeOK, QDCount: 1, ANCount: 1},
		},
		{
			name:        "qr out of range",
			header:      Header{QR: 2},
			expectError: true,
		},
		{
			name:        "opcode out of range",
			header:      Header{Opcode: 0x10},
			expectError: true,
		},
		{
			name:        "z out of range",
			header:      Header{Z: 0x08},
			expectError: true,
		},
		{
			name:        "rcode out of range",
			header:      Header{RCode: 0x10},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.header.Validate()
			if tt.expectError && err == nil {
				t.Errorf("expected an error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestDomainNameTextAndWireAgree(t *testing.T) {
	text := NewTextDomainName("codecrafters.io")
	wire := NewWireDomainName([]byte{
		12, 'c', 'o', 'd', 'e', 'c', 'r', 'a', 'f', 't', 'e', 'r', 's',
		2, 'i', 'o',
		0,
	})

	if !text.Equal(wire) {
		t.Errorf("expected text form %q to equal wire form %q", text.String(), wire.String())
	}
}

func TestDomainNameValidate(t *testing.T) {
	tests := []struct {
		name        string
		dn          DomainName
		expectError bool
	}{
		{name: "root name", dn: NewTextDomainName("")},
		{name: "simple name", dn: NewTextDomainName("codecrafters.io")},
		{name: "trailing dot tolerated", dn: NewTextDomainName("codecrafters.io.")},
		{name: "label too long", dn: NewTextDomainName(string(make([]byte, 64)) + ".io"), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dn.Validate()
			if tt.expectError && err == nil {
				t.Errorf("expected an error, got nil")
			}
		})
	}
}

func TestAnswerRDLength(t *testing.T) {
	data, err := NewARecordData(net.IPv4(8, 8, 8, 8))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := NewAnswer(NewTextDomainName("codecrafters.io"), RRTypeA, RRClassIN, 60, data)

	length, err := a.RDLength()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if length != 4 {
		t.Errorf("expected rdlength 4, got %d", length)
	}
}

func TestNewARecordDataRejectsNonIPv4(t *testing.T) {
	_, err := NewARecordData(net.ParseIP("::1"))
	if err == nil {
		t.Errorf("expected an error for an IPv6 address")
	}
}
