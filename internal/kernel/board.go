// Package kernel brings up the display and runs the frame loop.
package kernel

import (
	"gameos/internal/mailbox"

	"github.com/juju/errors"
)

// Board is a Raspberry Pi model as far as peripheral addresses go.
type Board struct {
	Name           string
	PeripheralBase uintptr
}

// Peripheral block offsets
const (
	GPIOOffset  = 0x200000
	UART0Offset = 0x201000
)

// Supported boards
var (
	Pi3 = Board{Name: "pi3", PeripheralBase: 0x3F000000}
	Pi4 = Board{Name: "pi4", PeripheralBase: 0xFE000000}
)

// BoardByName looks up a supported board.
func BoardByName(name string) (Board, error) {
	for _, b := range []Board{Pi3, Pi4} {
		if b.Name == name {
			return b, nil
		}
	}
	return Board{}, errors.NotFoundf("board %q", name)
}

// MailboxBase is the address of the VideoCore mailbox registers.
func (b Board) MailboxBase() uintptr { return b.PeripheralBase + mailbox.PeripheralOffset }

// GPIOBase is the address of the GPIO block.
func (b Board) GPIOBase() uintptr { return b.PeripheralBase + GPIOOffset }

// UART0Base is the address of the PL011 UART.
func (b Board) UART0Base() uintptr { return b.PeripheralBase + UART0Offset }
