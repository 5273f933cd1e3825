// Package vcsim simulates the VideoCore side of the mailbox so the kernel's
// hardware-facing code can run as an ordinary process.
//
// A Firmware is the mailbox register block (an mmio.Region). Writing a word to
// the write register makes it service the property buffer in the shared
// scratch region right away and queue the reply, so everything stays
// synchronous and deterministic.
package vcsim

import (
	"gameos/internal/logscope"
	"gameos/internal/mailbox"
	"gameos/internal/mmio"
	"gameos/internal/property"

	"github.com/juju/errors"
	"github.com/pion/logging"
)

// Behavior selects how the firmware answers property requests.
type Behavior int

const (
	// Process answers every tag it knows.
	Process Behavior = iota
	// Reject marks every buffer with the error result code.
	Reject
	// Ignore hands buffers back untouched, still carrying the request code.
	Ignore
	// Garble writes a result code the protocol does not define.
	Garble
)

// GarbledCode is the result code written under Garble.
const GarbledCode = 0xDEAD0001

// Config sets up a simulated firmware.
type Config struct {
	// Scratch is the shared buffer region, seen by the firmware at ScratchAddr.
	Scratch     mmio.Region
	ScratchAddr uint32

	// Memory is GPU memory; framebuffers are carved from it. Its first byte
	// is at MemoryBase.
	Memory     mmio.Bytes
	MemoryBase uint32

	// AllocBase and AllocSize fix what AllocateBuffer returns. When zero the
	// buffer starts at MemoryBase and is sized from the current mode.
	AllocBase uint32
	AllocSize uint32
	// BusAlias is ORed into returned buffer addresses, as the real firmware
	// does with its cache alias bits.
	BusAlias uint32

	Behavior Behavior
	// FullPolls makes the status register report full this many times before
	// each accepted write.
	FullPolls int
	// Noise is queued ahead of every reply; use it for words on other channels.
	Noise []uint32

	// LoggerFactory for logging. If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Firmware is the simulated GPU. It is not safe for concurrent use; the
// kernel only touches it from inside a critical section.
type Firmware struct {
	cfg Config
	log logging.LeveledLogger

	queue    []uint32
	fullLeft int

	mode     Mode
	alloc    bool
	requests int
	last     []uint32
}

// Mode is the display state the firmware holds.
type Mode struct {
	PhysicalWidth, PhysicalHeight uint32
	VirtualWidth, VirtualHeight   uint32
	Depth                         uint32
}

// DefaultMode is what the firmware reports before anyone sets a mode.
var DefaultMode = Mode{
	PhysicalWidth: 1024, PhysicalHeight: 768,
	VirtualWidth: 1024, VirtualHeight: 768,
	Depth: 16,
}

// New returns a firmware in DefaultMode.
func New(cfg Config) (*Firmware, error) {
	if cfg.Scratch == nil {
		return nil, errors.NotValidf("firmware without scratch region")
	}
	if cfg.ScratchAddr&0xF != 0 {
		return nil, errors.NotValidf("scratch address %#x", cfg.ScratchAddr)
	}
	return &Firmware{
		cfg:      cfg,
		log:      logscope.New(cfg.LoggerFactory, "vcsim"),
		mode:     DefaultMode,
		fullLeft: cfg.FullPolls,
	}, nil
}

// Mode returns the current display state.
func (f *Firmware) Mode() Mode { return f.mode }

// Requests is the number of property buffers received.
func (f *Firmware) Requests() int { return f.requests }

// LastRequest is the most recent buffer as it arrived, before processing.
func (f *Firmware) LastRequest() []uint32 { return f.last }

// Load32 implements mmio.Region for the mailbox register block.
func (f *Firmware) Load32(off uintptr) uint32 {
	switch off {
	case mailbox.StatusOffset:
		var s uint32
		if f.fullLeft > 0 {
			f.fullLeft--
			s |= mailbox.StatusFull
		}
		if len(f.queue) == 0 {
			s |= mailbox.StatusEmpty
		}
		return s
	case mailbox.ReadOffset:
		if len(f.queue) == 0 {
			return 0
		}
		w := f.queue[0]
		f.queue = f.queue[1:]
		return w
	}
	return 0
}

// Store32 implements mmio.Region. Only the write register does anything.
func (f *Firmware) Store32(off uintptr, v uint32) {
	if off != mailbox.WriteOffset {
		return
	}
	f.fullLeft = f.cfg.FullPolls
	w := mailbox.UnpackWord(v)
	if w.Channel != mailbox.ChannelProperty {
		f.log.Debugf("ignoring word %#08x on channel %d", w.Addr(), w.Channel)
		return
	}
	if w.Addr() != f.cfg.ScratchAddr {
		f.log.Warnf("buffer at %#08x is not the scratch region", w.Addr())
		return
	}
	f.service()
	f.queue = append(f.queue, f.cfg.Noise...)
	f.queue = append(f.queue, v)
}

// Len implements mmio.Region.
func (f *Firmware) Len() int { return mailbox.RegisterSpan }

// Map implements framebuffer.Mapper over GPU memory.
func (f *Firmware) Map(addr uintptr, size int) ([]byte, error) {
	base := uintptr(f.cfg.MemoryBase)
	end := base + uintptr(len(f.cfg.Memory))
	if size <= 0 || addr < base || addr+uintptr(size) > end {
		return nil, errors.NotFoundf("GPU memory %#x+%#x (have %#x-%#x)", addr, size, base, end)
	}
	return f.cfg.Memory[addr-base : addr-base+uintptr(size)], nil
}

func (f *Firmware) service() {
	f.requests++
	size := f.cfg.Scratch.Load32(0)
	if size < 12 || size%4 != 0 || int(size) > f.cfg.Scratch.Len() {
		f.log.Warnf("refusing buffer with size word %d", size)
		f.cfg.Scratch.Store32(4, uint32(property.ResponseError))
		return
	}

	buf := make([]uint32, size/4)
	for i := range buf {
		buf[i] = f.cfg.Scratch.Load32(uintptr(i * 4))
	}
	f.last = append([]uint32(nil), buf...)

	switch f.cfg.Behavior {
	case Ignore:
		return
	case Reject:
		buf[1] = uint32(property.ResponseError)
	case Garble:
		buf[1] = GarbledCode
	default:
		if f.answer(buf) {
			buf[1] = uint32(property.ResponseSuccess)
		} else {
			buf[1] = uint32(property.ResponseError)
		}
	}

	for i, w := range buf {
		f.cfg.Scratch.Store32(uintptr(i*4), w)
	}
}
