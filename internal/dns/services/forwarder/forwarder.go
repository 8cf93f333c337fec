// Package forwarder implements the per-question forwarding and answer
// aggregation state machine described in spec.md §4.6: one inbound
// multi-question request becomes N sequential single-question upstream
// queries, correlated by transaction ID, whose answers are merged back
// into a single ordered answer sequence.
package forwarder

import (
	"fmt"
	"net"
	"time"

	"github.com/arlobridge/dnsrelay/internal/dns/common/clock"
	"github.com/arlobridge/dnsrelay/internal/dns/common/log"
	"github.com/arlobridge/dnsrelay/internal/dns/domain"
	"github.com/arlobridge/dnsrelay/internal/dns/gateways/wire"
)

// Dialer opens a network connection to an upstream address. It exists so
// tests can substitute an in-process fake for the real per-question
// ephemeral UDP socket spec.md §4.6 describes.
type Dialer func(network, address string) (net.Conn, error)

// Options configures a Forwarder.
type Options struct {
	// Upstream is the configured resolver address ("host:port"), per
	// spec.md §1: a single upstream, no resolver-selection policy.
	Upstream string
	// Timeout bounds each per-question upstream round trip. spec.md §5
	// notes the baseline design has no timeout; §9 open question 3
	// recommends adding one, which this implementation does.
	Timeout time.Duration
	// BufferSize is the size of the buffer used for the upstream's
	// reply (spec.md §6: 512 bytes baseline, 1024 acceptable).
	BufferSize int
	Dial       Dialer
	Logger     log.Logger
	// Clock supplies the current time for deadline computation. Tests can
	// substitute clock.MockClock to assert on the exact deadline passed to
	// SetDeadline without depending on wall-clock timing.
	Clock clock.Clock
}

// Forwarder issues one upstream query per question and aggregates the
// answers, strictly sequentially (spec.md §5: single-threaded, blocking).
type Forwarder struct {
	upstream   string
	timeout    time.Duration
	bufferSize int
	dial       Dialer
	logger     log.Logger
	clock      clock.Clock
}

// New constructs a Forwarder, applying the same defaulting behavior the
// lineage's upstream resolver uses for timeout and dial function.
func New(opts Options) (*Forwarder, error) {
	if opts.Upstream == "" {
		return nil, fmt.Errorf("forwarder: upstream address is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 512
	}
	if opts.Dial == nil {
		opts.Dial = net.Dial
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	return &Forwarder{
		upstream:   opts.Upstream,
		timeout:    opts.Timeout,
		bufferSize: opts.BufferSize,
		dial:       opts.Dial,
		logger:     opts.Logger,
		clock:      opts.Clock,
	}, nil
}

// Forward implements spec.md §4.6: for each question in req, construct and
// send a single-question query and aggregate the resulting answers in
// question order. A question whose upstream round trip fails contributes
// no answers (spec.md §7's UpstreamError policy) — the aggregated slice
// may legitimately be shorter than len(req.Questions).
func (f *Forwarder) Forward(req domain.MessageForm) []domain.Answer {
	aggregated := make([]domain.Answer, 0, len(req.Questions))
	for i, q := range req.Questions {
		answers, err := f.forwardOne(req.Header, q)
		if err != nil {
			f.logger.Warn(map[string]any{
				"error": err.Error(),
				"index": i,
				"name":  q.Name.String(),
			}, "upstream forward failed for question")
			continue
		}
		aggregated = append(aggregated, answers...)
	}
	return aggregated
}

// forwardOne performs steps 1-3 of spec.md §4.6 for a single question:
// build the single-question query, open a fresh ephemeral socket, send
// and receive once, then decode the reply.
func (f *Forwarder) forwardOne(inbound domain.Header, q domain.Question) ([]domain.Answer, error) {
	queryHeader := domain.Header{
		ID:      inbound.ID,
		Opcode:  inbound.Opcode,
		RD:      inbound.RD,
		QDCount: 1,
	}
	qBytes, err := wire.EncodeQuestion(q)
	if err != nil {
		return nil, fmt.Errorf("encode question: %w", err)
	}
	out := append(wire.EncodeHeader(queryHeader), qBytes...)

	conn, err := f.dial("udp", f.upstream)
	if err != nil {
		return nil, fmt.Errorf("dial upstream: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(f.clock.Now().Add(f.timeout)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	if _, err := conn.Write(out); err != nil {
		return nil, fmt.Errorf("write to upstream: %w", err)
	}

	buf := make([]byte, f.bufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read from upstream: %w", err)
	}

	parsed, err := wire.ParseRequest(buf[:n], f.logger)
	if err != nil {
		return nil, fmt.Errorf("decode upstream response: %w", err)
	}
	form := parsed.Form()
	if form.Header.QR != 1 {
		return nil, fmt.Errorf("upstream datagram was not a response (qr=%d)", form.Header.QR)
	}
	// spec.md §9 open question 4: validate the echoed ID against what we
	// sent, defending against a spoofed or stale reply on the socket.
	if form.Header.ID != queryHeader.ID {
		return nil, fmt.Errorf("id mismatch: sent %d, got %d", queryHeader.ID, form.Header.ID)
	}
	return form.Answers, nil
}
