// Package uart drives the PL011 UART0 used as the kernel console.
package uart

import (
	"gameos/internal/critical"
	"gameos/internal/mmio"

	"github.com/juju/errors"
)

// PL011 register offsets from the UART0 base
const (
	DR   = 0x00
	FR   = 0x18
	IBRD = 0x24
	FBRD = 0x28
	LCRH = 0x2C
	CR   = 0x30
	IMSC = 0x38
	ICR  = 0x44

	RegisterSpan = 0x48
)

// GPIO pull-up/down register offsets from the GPIO base
const (
	GPPUD     = 0x94
	GPPUDCLK0 = 0x98

	GPIOSpan = 0x9C
)

// Flag register bits
const (
	FlagRXEmpty = 1 << 4
	FlagTXFull  = 1 << 5
)

// Config selects the registers a Port drives.
type Config struct {
	// UART covers RegisterSpan bytes at the UART0 base.
	UART mmio.Region
	// GPIO covers GPIOSpan bytes at the GPIO base. Optional; without it the
	// pull-up sequence for pins 14 and 15 is skipped.
	GPIO mmio.Region
	// Delay spins for about n cycles. Defaults to a busy loop.
	Delay func(n int)
	// Mask serializes writers. Optional.
	Mask critical.Mask
}

// Port is an io.Writer over the UART transmit FIFO. Every '\n' goes out as
// "\r\n".
type Port struct {
	regs  mmio.Region
	gpio  mmio.Region
	delay func(int)
	mask  critical.Mask
}

// New validates the register windows. It does not touch the hardware.
func New(c Config) (*Port, error) {
	if c.UART == nil || c.UART.Len() < RegisterSpan {
		return nil, errors.NotValidf("UART register window")
	}
	if c.GPIO != nil && c.GPIO.Len() < GPIOSpan {
		return nil, errors.NotValidf("GPIO register window of %d bytes", c.GPIO.Len())
	}
	p := &Port{regs: c.UART, gpio: c.GPIO, delay: c.Delay, mask: c.Mask}
	if p.delay == nil {
		p.delay = spin
	}
	return p, nil
}

var sink int

//go:noinline
func spin(n int) {
	for i := 0; i < n; i++ {
		sink++
	}
}

// Init programs 115200 8N1 with FIFOs, assuming a 3 MHz UART clock.
//
//go:nosplit
func (p *Port) Init() {
	p.regs.Store32(CR, 0)

	if p.gpio != nil {
		p.gpio.Store32(GPPUD, 0)
		p.delay(150)
		p.gpio.Store32(GPPUDCLK0, (1<<14)|(1<<15))
		p.delay(150)
		p.gpio.Store32(GPPUDCLK0, 0)
	}

	p.regs.Store32(ICR, 0x7FF)

	p.regs.Store32(IBRD, 1)
	p.regs.Store32(FBRD, 40)

	// Enable FIFO and 8 bit transmission
	p.regs.Store32(LCRH, (1<<4)|(1<<5)|(1<<6))

	p.regs.Store32(IMSC, (1<<1)|(1<<4)|(1<<5)|(1<<6)|
		(1<<7)|(1<<8)|(1<<9)|(1<<10))

	// Enable UART0, receive and transmit
	p.regs.Store32(CR, (1<<0)|(1<<8)|(1<<9))
}

// WriteByte waits for FIFO space and sends c.
//
//go:nosplit
func (p *Port) WriteByte(c byte) error {
	for p.regs.Load32(FR)&FlagTXFull != 0 {
		// Wait for transmit FIFO to have space
	}
	p.regs.Store32(DR, uint32(c))
	return nil
}

// ReadByte waits for a received byte.
//
//go:nosplit
func (p *Port) ReadByte() (byte, error) {
	for p.regs.Load32(FR)&FlagRXEmpty != 0 {
		// Wait for receive FIFO to have data
	}
	return byte(p.regs.Load32(DR)), nil
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	if p.mask == nil {
		p.write(b)
	} else {
		critical.Free(p.mask, func() { p.write(b) })
	}
	return len(b), nil
}

func (p *Port) write(b []byte) {
	for _, c := range b {
		if c == '\n' {
			p.WriteByte('\r')
		}
		p.WriteByte(c)
	}
}
