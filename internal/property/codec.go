// Package property speaks the VideoCore property-tag protocol on the
// mailbox property channel.
//
// https://github.com/raspberrypi/firmware/wiki/Mailbox-property-interface
package property

import "fmt"

// ResultCode is the second header word of a property buffer.
type ResultCode uint32

// Property message constants
const (
	Request         ResultCode = 0x00000000 // not (yet) processed
	ResponseSuccess ResultCode = 0x80000000
	ResponseError   ResultCode = 0x80000001
)

func (c ResultCode) String() string {
	switch c {
	case Request:
		return "Request"
	case ResponseSuccess:
		return "ResponseSuccess"
	case ResponseError:
		return "ResponseError"
	}
	return fmt.Sprintf("ResultCode(%#08x)", uint32(c))
}

const (
	// EndTag terminates the tag list.
	EndTag = 0
	// TagRequest is the request/response indicator of an unprocessed tag.
	TagRequest = 0
	// TagResponse is set by the firmware in the indicator of a processed tag.
	TagResponse = 1 << 31

	headerWords = 2
	tagHeader   = 3
	// Alignment of the whole buffer, forced by the mailbox word layout.
	Alignment = 16
)

// Build lays out a request buffer: [size, request code], the tags, the end
// tag, and zero padding up to a multiple of Alignment bytes. The size word
// is the byte length of the returned slice.
func Build(msgs []Message) []uint32 {
	buf := []uint32{0, uint32(Request)}
	for _, m := range msgs {
		buf = append(buf, m.Words()...)
	}
	buf = append(buf, EndTag)
	for (len(buf)*4)%Alignment != 0 {
		buf = append(buf, 0)
	}
	buf[0] = uint32(len(buf) * 4)
	return buf
}

// Span locates one tag's value buffer inside a built buffer.
type Span struct {
	Kind Kind
	// Offset is the word index of the first value word.
	Offset int
	// Words is the size of the value buffer.
	Words int
}

// Layout computes where Build places each tag's value buffer. It reads the
// same table Build does, so the two cannot drift apart.
func Layout(msgs []Message) []Span {
	spans := make([]Span, len(msgs))
	off := headerWords
	for i, m := range msgs {
		n := m.Kind.ValueWords()
		spans[i] = Span{Kind: m.Kind, Offset: off + tagHeader, Words: n}
		off += tagHeader + n
	}
	return spans
}

// DecodeError means the buffer is not something the firmware could have
// produced. There is no safe way to continue after one.
type DecodeError struct {
	Code uint32
	Len  int
}

func (e *DecodeError) Error() string {
	if e.Len < headerWords {
		return fmt.Sprintf("property: buffer of %d words has no header", e.Len)
	}
	return fmt.Sprintf("property: unknown result code %#08x", e.Code)
}

// ParseResult classifies a buffer by its result code.
func ParseResult(buf []uint32) (ResultCode, error) {
	if len(buf) < headerWords {
		return 0, &DecodeError{Len: len(buf)}
	}
	switch c := ResultCode(buf[1]); c {
	case Request, ResponseSuccess, ResponseError:
		return c, nil
	}
	return 0, &DecodeError{Code: buf[1], Len: len(buf)}
}
