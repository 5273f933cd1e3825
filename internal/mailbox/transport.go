package mailbox

import (
	"gameos/internal/critical"
	"gameos/internal/logscope"
	"gameos/internal/mmio"

	"github.com/juju/errors"
	"github.com/pion/logging"
)

var (
	// ErrTimeout is returned when a bounded Wait gives up on the hardware.
	ErrTimeout = errors.New("mailbox: wait limit reached")
	// ErrMisaligned is returned for payload addresses that are not 16-byte aligned.
	ErrMisaligned = errors.New("mailbox: address not 16-byte aligned")
	// ErrTooLarge is returned when a payload does not fit the scratch region.
	ErrTooLarge = errors.New("mailbox: payload larger than scratch region")
)

// Wait bounds the busy-wait on the status register. The zero value waits
// forever, which is what the firmware contract asks for; tests inject a
// limit so failure paths cannot hang.
type Wait struct {
	// Limit is the number of polls before giving up. Zero means no limit.
	Limit int
}

// Unbounded polls until the hardware is ready.
var Unbounded = Wait{}

// Bounded gives up after n polls.
func Bounded(n int) Wait {
	return Wait{Limit: n}
}

func (w Wait) until(ready func() bool) bool {
	return w.budget().until(ready)
}

func (w Wait) budget() *budget {
	return &budget{limit: w.Limit}
}

// budget is a poll count shared across one operation.
type budget struct {
	limit int
	used  int
}

func (b *budget) spent() bool {
	return b.limit != 0 && b.used >= b.limit
}

func (b *budget) until(ready func() bool) bool {
	for !b.spent() {
		b.used++
		if ready() {
			return true
		}
	}
	return false
}

// Config describes the hardware a Mailbox talks to.
type Config struct {
	// Registers covers at least RegisterSpan bytes starting at the mailbox base.
	Registers mmio.Region
	// Scratch is the fixed memory the firmware reads messages from.
	Scratch mmio.Region
	// ScratchAddr is the address of Scratch as the firmware sees it.
	ScratchAddr uint32
	// Mask guards every send/read pair.
	Mask critical.Mask
	// Wait is the polling policy. Defaults to Unbounded.
	Wait Wait
	// LoggerFactory for logging. If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Mailbox is the single hardware mailbox. Create one at startup and pass it
// to whatever needs to talk to the firmware.
type Mailbox struct {
	regs        mmio.Region
	scratch     mmio.Region
	scratchAddr uint32
	mask        critical.Mask
	wait        Wait
	log         logging.LeveledLogger
}

// New checks the configuration and returns the mailbox.
func New(c Config) (*Mailbox, error) {
	if c.Registers == nil || c.Scratch == nil || c.Mask == nil {
		return nil, errors.NotValidf("mailbox config without registers, scratch or mask")
	}
	if c.Registers.Len() < RegisterSpan {
		return nil, errors.NotValidf("register window of %d bytes", c.Registers.Len())
	}
	if c.ScratchAddr&0xF != 0 {
		return nil, errors.Annotatef(ErrMisaligned, "scratch at %#x", c.ScratchAddr)
	}
	m := &Mailbox{
		regs:        c.Registers,
		scratch:     c.Scratch,
		scratchAddr: c.ScratchAddr,
		mask:        c.Mask,
		wait:        c.Wait,
		log:         logscope.New(c.LoggerFactory, "mailbox"),
	}
	m.log.Debugf("scratch at %#08x, %d bytes", c.ScratchAddr, c.Scratch.Len())
	return m, nil
}

// Mask is the critical section callers must hold around Send and Read.
func (m *Mailbox) Mask() critical.Mask {
	return m.mask
}

// ScratchAddr is the firmware-visible address of the scratch region.
func (m *Mailbox) ScratchAddr() uint32 {
	return m.scratchAddr
}

// ScratchWords is the capacity of the scratch region in 32-bit words.
func (m *Mailbox) ScratchWords() int {
	return m.scratch.Len() / 4
}

//go:nosplit
func (m *Mailbox) status() Status {
	return DecodeStatus(m.regs.Load32(StatusOffset))
}

// Send waits until the mailbox is not full, copies words into the scratch
// region and posts its address on channel ch. The caller must already have
// laid words out as the firmware expects, length included.
func (m *Mailbox) Send(ch Channel, words []uint32) error {
	if !ch.Valid() {
		return errors.NotValidf("channel %d", ch)
	}
	if len(words) > m.ScratchWords() {
		return errors.Annotatef(ErrTooLarge, "%d words, room for %d", len(words), m.ScratchWords())
	}
	msg, err := PackWord(m.scratchAddr, ch)
	if err != nil {
		return err
	}

	// Wait until mailbox is not full
	if !m.wait.until(func() bool { return !m.status().Full }) {
		return errors.Annotate(ErrTimeout, "send: mailbox stayed full")
	}

	for i, w := range words {
		m.scratch.Store32(uintptr(i*4), w)
	}
	m.regs.Store32(WriteOffset, msg)
	return nil
}

// Read waits for a word on channel ch. Words for other channels share the
// same queue; they are read and dropped. A bounded Wait covers the whole
// call: status polls and dropped words draw from the same limit.
func (m *Mailbox) Read(ch Channel) (Word, error) {
	if !ch.Valid() {
		return Word{}, errors.NotValidf("channel %d", ch)
	}
	b := m.wait.budget()
	for {
		// Wait until mailbox is not empty
		if !b.until(func() bool { return !m.status().Empty }) {
			return Word{}, errors.Annotate(ErrTimeout, "read: no word for channel")
		}
		w := UnpackWord(m.regs.Load32(ReadOffset))
		if w.Channel == ch {
			return w, nil
		}
		m.log.Debugf("dropping word %#08x for channel %d", w.Addr(), w.Channel)
		if b.spent() {
			return Word{}, errors.Annotate(ErrTimeout, "read: only words for other channels")
		}
		b.used++
	}
}

// ReadScratch copies the scratch region, as the firmware left it, into words.
func (m *Mailbox) ReadScratch(words []uint32) error {
	if len(words) > m.ScratchWords() {
		return errors.Annotatef(ErrTooLarge, "%d words, room for %d", len(words), m.ScratchWords())
	}
	for i := range words {
		words[i] = m.scratch.Load32(uintptr(i * 4))
	}
	return nil
}
