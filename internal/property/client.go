package property

import (
	"gameos/internal/critical"
	"gameos/internal/logscope"
	"gameos/internal/mailbox"

	"github.com/juju/errors"
	"github.com/pion/logging"
)

// ErrProtocol is wrapped by every error the firmware itself causes: it
// rejected the request or never processed it.
var ErrProtocol = errors.New("property: protocol fault")

// Client sends property requests through a mailbox.
type Client struct {
	mb  *mailbox.Mailbox
	log logging.LeveledLogger
}

// NewClient returns a client for mb. A nil factory disables logging.
func NewClient(mb *mailbox.Mailbox, lf logging.LoggerFactory) *Client {
	return &Client{mb: mb, log: logscope.New(lf, "property")}
}

// Response is a processed buffer together with the position of each tag.
type Response struct {
	Words []uint32
	Spans []Span
}

// Word returns the raw buffer word at index i.
func (r Response) Word(i int) uint32 {
	return r.Words[i]
}

// Values returns the value buffer of the tag at index tag.
func (r Response) Values(tag int) []uint32 {
	s := r.Spans[tag]
	return r.Words[s.Offset : s.Offset+s.Words]
}

// Value returns value word i of the tag at index tag.
func (r Response) Value(tag, i int) uint32 {
	return r.Values(tag)[i]
}

// Acknowledged reports whether the firmware marked the tag as processed.
func (r Response) Acknowledged(tag int) bool {
	return r.Words[r.Spans[tag].Offset-1]&TagResponse != 0
}

// Send builds one buffer from msgs and exchanges it with the firmware. The
// send, the wait for completion and the copy back all happen inside one
// critical section.
//
// A buffer the firmware rejected or left unprocessed yields an error wrapping
// ErrProtocol. A result code outside the known three means the firmware
// contract is broken; Send panics with a *DecodeError.
func (c *Client) Send(msgs ...Message) (Response, error) {
	buf := Build(msgs)
	c.log.Tracef("sendMessages: %d tags, %d bytes", len(msgs), buf[0])

	var (
		reply mailbox.Word
		err   error
	)
	critical.Free(c.mb.Mask(), func() {
		if err = c.mb.Send(mailbox.ChannelProperty, buf); err != nil {
			return
		}
		// Wait for the firmware to hand the buffer back
		if reply, err = c.mb.Read(mailbox.ChannelProperty); err != nil {
			return
		}
		err = c.mb.ReadScratch(buf)
	})
	if err != nil {
		return Response{}, errors.Annotate(err, "property exchange")
	}
	if reply.Addr() != c.mb.ScratchAddr() {
		c.log.Warnf("sendMessages: reply for %#08x, expected %#08x", reply.Addr(), c.mb.ScratchAddr())
	}

	code, perr := ParseResult(buf)
	if perr != nil {
		c.log.Errorf("sendMessages: %v", perr)
		panic(perr)
	}

	switch code {
	case ResponseError:
		c.log.Warnf("sendMessages: GPU returned error for %v", msgs)
		return Response{}, errors.Annotate(ErrProtocol, "firmware returned error")
	case Request:
		c.log.Warnf("sendMessages: still REQUEST, GPU didn't process %v", msgs)
		return Response{}, errors.Annotate(ErrProtocol, "buffer never processed")
	}

	resp := Response{Words: buf, Spans: Layout(msgs)}
	for i, m := range msgs {
		if !resp.Acknowledged(i) {
			c.log.Debugf("sendMessages: tag %v not marked processed", m.Kind)
		}
	}
	return resp, nil
}
