package wire

import (
	"github.com/arlobridge/dnsrelay/internal/dns/common/log"
	"github.com/arlobridge/dnsrelay/internal/dns/domain"
)

// ParseRequest decodes a raw datagram into the Request arm of Message, per
// spec.md §4.5. Every inbound datagram is interpreted as a request
// regardless of its QR bit (the bit is captured in the header but never
// used to switch behavior here — that's the server loop's job).
//
// Only a header that can't be read at all (fewer than 12 bytes) is fatal:
// with no ID to echo there is nothing worth building a reply around.
// Anything past that degrades gracefully per spec.md §7's ParseError
// policy: a question that fails to decode truncates the question section,
// and an answer that fails to decode leaves the whole answer section
// absent (nil), rather than failing the whole parse, so the caller can
// still produce a best-effort reply.
func ParseRequest(datagram []byte, logger log.Logger) (domain.Message, error) {
	header, err := DecodeHeader(datagram)
	if err != nil {
		return domain.Message{}, err
	}

	questions := make([]domain.Question, 0, header.QDCount)
	cursor := HeaderSize
	for i := 0; i < int(header.QDCount); i++ {
		q, next, err := DecodeQuestion(datagram, cursor)
		if err != nil {
			logger.Warn(map[string]any{
				"error": err.Error(),
				"index": i,
			}, "failed to decode question; truncating question section")
			break
		}
		questions = append(questions, q)
		cursor = next
	}

	// The answer section, when present, is sized by ancount, not qdcount:
	// an inbound query normally has ancount==0 and no answer bytes, but
	// when this same parser is pointed at an upstream's response (the
	// forwarder's only parser, spec.md §4.6 step 3) ancount is the
	// number of records actually returned, which can exceed qdcount for
	// a single question with multiple A records.
	var answers []domain.Answer
	if cursor < len(datagram) {
		parsed := make([]domain.Answer, 0, header.ANCount)
		complete := true
		for i := 0; i < int(header.ANCount); i++ {
			a, next, err := DecodeAnswer(datagram, cursor)
			if err != nil {
				complete = false
				break
			}
			parsed = append(parsed, a)
			cursor = next
		}
		if complete && len(parsed) > 0 {
			answers = parsed
		}
	}

	form := domain.MessageForm{
		Header:    header,
		Questions: questions,
		Answers:   answers,
	}
	return domain.NewRequest(form), nil
}

// SerializeResponse encodes the Response arm of Message into its wire
// bytes: header, then each question, then each answer, in order, per
// spec.md §4.5. Serializing the Request arm is a usage error (spec.md §7's
// EncodeMisuse) and returns ErrEncodeMisuse rather than emitting bytes.
//
// qdcount and ancount are always overwritten to match the actual number
// of questions and answers being written, regardless of what the caller
// set on the header — spec.md §4.5 and §8 property 4 require this
// invariant to hold unconditionally, and §9 open question 1 specifically
// flags ancount as a place a naive implementation gets this wrong.
func SerializeResponse(msg domain.Message) ([]byte, error) {
	if msg.IsRequest() {
		return nil, ErrEncodeMisuse
	}

	form := msg.Form()
	header := form.Header
	if len(form.Questions) > 0xFFFF || len(form.Answers) > 0xFFFF {
		return nil, ErrTruncatedQuestion
	}
	header.QDCount = uint16(len(form.Questions))
	header.ANCount = uint16(len(form.Answers))

	buf := EncodeHeader(header)
	for _, q := range form.Questions {
		qBytes, err := EncodeQuestion(q)
		if err != nil {
			return nil, err
		}
		buf = append(buf, qBytes...)
	}
	for _, a := range form.Answers {
		aBytes, err := EncodeAnswer(a)
		if err != nil {
			return nil, err
		}
		buf = append(buf, aBytes...)
	}
	return buf, nil
}
