//go:build baremetal && arm64

// Command kernel is the bare-metal image: it brings up the UART console,
// negotiates a framebuffer with the VideoCore firmware and runs the UI
// frame loop forever.
package main

import (
	"context"
	"fmt"
	"unsafe"

	"gameos/internal/critical"
	"gameos/internal/kernel"
	"gameos/internal/logscope"
	"gameos/internal/mailbox"
	"gameos/internal/memlayout"
	"gameos/internal/mmio"
	"gameos/internal/property"
	"gameos/internal/uart"
	"gameos/internal/ui"

	"github.com/pion/logging"
)

// Property buffers are capped at 1KB
const scratchSize = 1024

// Linker symbol: end of kernel (from linker.ld)
//
//go:linkname __end __end
var __end uintptr

// KernelMain is the entry point called from boot.s
//
//go:noinline
func KernelMain(r0, r1, atags uint32) {
	_, _, _ = r0, r1, atags

	mask := critical.DAIF{}
	port, err := uart.New(uart.Config{
		UART: mmio.Physical(board.UART0Base(), uart.RegisterSpan),
		GPIO: mmio.Physical(board.GPIOBase(), uart.GPIOSpan),
		Mask: mask,
	})
	if err != nil {
		kernel.Halt(logscope.New(nil, "kernel"), err)
	}
	port.Init()

	lf := &logging.DefaultLoggerFactory{
		Writer:          port,
		DefaultLogLevel: logging.LogLevelInfo,
		ScopeLevels:     map[string]logging.LogLevel{},
	}
	log := lf.NewLogger("kernel")
	log.Infof("Hello from %s!", board.Name)
	defer func() {
		if r := recover(); r != nil {
			kernel.Halt(log, fmt.Errorf("%v", r))
		}
	}()

	layout := memlayout.Default(uintptr(unsafe.Pointer(&__end)))
	log.Infof("Allocating Heap %#x-%#x", layout.HeapStart, layout.HeapStart+layout.HeapSize)
	log.Infof("Mailbox Heap Location %#x", layout.MailboxScratch())

	mb, err := mailbox.New(mailbox.Config{
		Registers:     mmio.Physical(board.MailboxBase(), mailbox.RegisterSpan),
		Scratch:       mmio.Physical(layout.MailboxScratch(), scratchSize),
		ScratchAddr:   uint32(layout.MailboxScratch()),
		Mask:          mask,
		LoggerFactory: lf,
	})
	if err != nil {
		kernel.Halt(log, err)
	}

	cfg := kernel.DefaultConfig
	cfg.LoggerFactory = lf
	surface, err := kernel.InitFramebuffer(property.NewClient(mb, lf), mmio.PhysicalMapper{}, cfg)
	if err != nil {
		kernel.Halt(log, err)
	}

	err = kernel.Run(context.Background(), surface, ui.Entrypoint(), kernel.Options{
		Clock:         kernel.NewGenericTimer(),
		LoggerFactory: lf,
	})
	kernel.Halt(log, err)
}

// main is never called on hardware; boot.s calls KernelMain directly. The
// call keeps KernelMain in the image.
func main() {
	KernelMain(0, 0, 0)
	for {
	}
}
