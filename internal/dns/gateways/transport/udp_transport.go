// Package transport binds the relay's single UDP socket and drives the
// server loop described in spec.md §5: receive one datagram, decode it,
// forward its questions upstream, encode the aggregated response, and send
// it back — strictly sequentially, with no per-packet goroutine.
package transport

import (
	"fmt"
	"net"
	"sync"

	"github.com/arlobridge/dnsrelay/internal/dns/common/log"
	"github.com/arlobridge/dnsrelay/internal/dns/domain"
	"github.com/arlobridge/dnsrelay/internal/dns/gateways/wire"
	"github.com/arlobridge/dnsrelay/internal/dns/services/forwarder"
)

// Forwarder is the subset of forwarder.Forwarder the server depends on,
// narrowed here so tests can substitute a stub without touching a socket.
type Forwarder interface {
	Forward(req domain.MessageForm) []domain.Answer
}

var _ Forwarder = (*forwarder.Forwarder)(nil)

// UDPTransport owns the listening socket for the relay's UDP transport
// (RFC 1035; spec.md §1 scopes this relay to UDP only).
type UDPTransport struct {
	addr       string
	bufferSize int
	forwarder  Forwarder
	logger     log.Logger

	mu      sync.Mutex
	conn    *net.UDPConn
	running bool
}

// NewUDPTransport constructs a transport bound to addr once Serve is
// called. bufferSize matches spec.md §6's inbound datagram buffer size.
func NewUDPTransport(addr string, bufferSize int, fwd Forwarder, logger log.Logger) *UDPTransport {
	if bufferSize <= 0 {
		bufferSize = 512
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &UDPTransport{addr: addr, bufferSize: bufferSize, forwarder: fwd, logger: logger}
}

// Address returns the configured network address the transport binds to.
func (t *UDPTransport) Address() string {
	return t.addr
}

// ResolvedAddr returns the socket's actual bound address once Serve has
// started listening, or nil beforehand. Useful when addr uses an ephemeral
// port ("127.0.0.1:0"), as tests commonly do.
func (t *UDPTransport) ResolvedAddr() *net.UDPAddr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	return t.conn.LocalAddr().(*net.UDPAddr)
}

// Serve binds the UDP socket and runs the receive/forward/reply loop until
// Stop closes the socket or a read fails for some other reason. It blocks
// the calling goroutine by design: spec.md §5 models this relay as a
// single-threaded, blocking loop, not a concurrent server.
func (t *UDPTransport) Serve() error {
	udpAddr, err := net.ResolveUDPAddr("udp", t.addr)
	if err != nil {
		return fmt.Errorf("resolve listen address %s: %w", t.addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("bind UDP socket on %s: %w", t.addr, err)
	}

	t.mu.Lock()
	t.conn = conn
	t.running = true
	t.mu.Unlock()

	t.logger.Info(map[string]any{
		"transport": "udp",
		"address":   conn.LocalAddr().String(),
	}, "dns relay listening")

	buf := make([]byte, t.bufferSize)
	for {
		n, clientAddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			t.mu.Lock()
			stopped := !t.running
			t.mu.Unlock()
			if stopped {
				return nil
			}
			return fmt.Errorf("read udp datagram: %w", err)
		}

		datagram := make([]byte, n)
		copy(datagram, buf[:n])
		t.handleDatagram(conn, datagram, clientAddr)
	}
}

// Stop closes the listening socket, unblocking the pending read inside
// Serve so it can return.
func (t *UDPTransport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return nil
	}
	t.running = false
	return t.conn.Close()
}

// handleDatagram implements one full request/response cycle for a single
// inbound datagram, per spec.md §5 steps 1-6. It never spawns a goroutine:
// the next datagram is only read once this one has been fully answered.
func (t *UDPTransport) handleDatagram(conn *net.UDPConn, datagram []byte, clientAddr *net.UDPAddr) {
	request, err := wire.ParseRequest(datagram, t.logger)
	if err != nil {
		t.logger.Warn(map[string]any{
			"client": clientAddr.String(),
			"error":  err.Error(),
		}, "dropping unparseable datagram")
		return
	}

	reqForm := request.Form()
	responseForm := t.buildResponse(reqForm)

	encoded, err := wire.SerializeResponse(domain.NewResponse(responseForm))
	if err != nil {
		t.logger.Error(map[string]any{
			"client": clientAddr.String(),
			"error":  err.Error(),
		}, "failed to encode response")
		return
	}

	if _, err := conn.WriteToUDP(encoded, clientAddr); err != nil {
		t.logger.Error(map[string]any{
			"client": clientAddr.String(),
			"error":  err.Error(),
		}, "failed to send response")
	}
}

// buildResponse constructs the reply MessageForm: the header echoes id,
// opcode, and rd from the request (spec.md §5 step 3), sets qr=1 and
// rcode=4 for any opcode other than standard query (spec.md §5 step 2 and
// §8 property 3), and echoes the question section back verbatim so the
// client can match the reply to its query.
func (t *UDPTransport) buildResponse(req domain.MessageForm) domain.MessageForm {
	header := domain.Header{
		ID:     req.Header.ID,
		QR:     1,
		Opcode: req.Header.Opcode,
		RD:     req.Header.RD,
	}

	var answers []domain.Answer
	if header.Opcode != 0 {
		header.RCode = domain.RCodeNotImplemented
	} else {
		answers = t.forwarder.Forward(req)
	}

	return domain.MessageForm{
		Header:    header,
		Questions: req.Questions,
		Answers:   answers,
	}
}
