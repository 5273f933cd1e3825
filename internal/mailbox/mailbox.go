// Package mailbox drives the VideoCore mailbox: three 32-bit registers
// used to hand 16-byte aligned message buffers to the GPU firmware.
//
// https://github.com/raspberrypi/firmware/wiki/Mailboxes
package mailbox

import (
	"fmt"

	"gameos/internal/bitfield"

	"github.com/juju/errors"
)

// Channel identifies a logical sub-device on the mailbox bus. It is packed
// into the low nibble of every mailbox word.
type Channel uint8

// Property channel (channel 8) - used for framebuffer and other properties
const ChannelProperty Channel = 8

// Valid reports whether c fits in the 4 bits reserved for it.
func (c Channel) Valid() bool {
	return c <= 0xF
}

// Register offsets from the mailbox base.
const (
	ReadOffset   = 0x00
	StatusOffset = 0x18
	WriteOffset  = 0x20

	// RegisterSpan is the number of bytes a register Region has to cover.
	RegisterSpan = WriteOffset + 4

	// PeripheralOffset locates the mailbox inside the peripheral window.
	PeripheralOffset = 0xB880
)

// Mailbox status flags
const (
	StatusFull  = 1 << 31
	StatusEmpty = 1 << 30
)

// Word is one value moved through the read or write register.
type Word struct {
	Channel Channel `bitfield:",4"`
	Data    uint32  `bitfield:",28"`
}

// Addr is the 16-byte aligned address carried by the word.
func (w Word) Addr() uint32 {
	return w.Data << 4
}

// PackWord combines a 16-byte aligned address with a channel.
func PackWord(addr uint32, ch Channel) (uint32, error) {
	if addr&0xF != 0 {
		return 0, errors.Annotatef(ErrMisaligned, "address %#x", addr)
	}
	packed, err := bitfield.Pack(Word{Channel: ch, Data: addr >> 4}, bitfield.Word32)
	if err != nil {
		return 0, errors.NewNotValid(err, fmt.Sprintf("channel %d", ch))
	}
	return uint32(packed), nil
}

// UnpackWord splits a raw register value.
func UnpackWord(v uint32) Word {
	var w Word
	mustUnpack(v, &w)
	return w
}

// Status is the decoded status register.
type Status struct {
	Reserved uint32 `bitfield:",30"`
	Empty    bool   `bitfield:",1"`
	Full     bool   `bitfield:",1"`
}

// DecodeStatus reads the empty and full flags out of a status value.
func DecodeStatus(v uint32) Status {
	var s Status
	mustUnpack(v, &s)
	return s
}

func mustUnpack(v uint32, x interface{}) {
	// The layouts above are fixed, so this only fails if someone edits the tags.
	if err := bitfield.Unpack(uint64(v), x); err != nil {
		panic(err)
	}
}
