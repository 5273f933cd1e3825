//go:build unix

// Command fbsim boots the display stack against the simulated VideoCore
// firmware, runs the frame loop and writes what ended up on screen to a PNG.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"

	"gameos/internal/critical"
	"gameos/internal/framebuffer"
	"gameos/internal/kernel"
	"gameos/internal/logscope"
	"gameos/internal/mailbox"
	"gameos/internal/memlayout"
	"gameos/internal/mmio"
	"gameos/internal/property"
	"gameos/internal/ui"
	"gameos/internal/vcsim"

	"github.com/juju/errors"
	"github.com/pion/logging"
)

const (
	kernelEnd   = 0x8_0000
	heapSize    = 1 << 20
	scratchSize = 1024
)

type options struct {
	width, height, depth uint
	frames               int
	splash               string
	out                  string
	shm                  string
	level                string
}

func main() {
	var o options
	flag.UintVar(&o.width, "width", 640, "display width in pixels")
	flag.UintVar(&o.height, "height", 480, "display height in pixels")
	flag.UintVar(&o.depth, "depth", 24, "bits per pixel")
	flag.IntVar(&o.frames, "frames", 60, "frames to run, 0 runs until interrupted")
	flag.StringVar(&o.splash, "splash", "", "splash image in imageconvert format")
	flag.StringVar(&o.out, "out", "screen.png", "PNG written with the final screen")
	flag.StringVar(&o.shm, "shm", "", "file backing GPU memory, so other processes can watch it")
	flag.StringVar(&o.level, "log", "info", "log level: disabled, error, warn, info, debug, trace")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fbsim [flags]\n")
		fmt.Fprintf(os.Stderr, "Runs the framebuffer bring-up and frame loop on a simulated GPU\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level, err := logscope.ParseLevel(o.level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	lf := logscope.Writer(os.Stderr, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, o, lf); err != nil {
		lf.NewLogger("fbsim").Errorf("%v", errors.ErrorStack(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, lf logging.LoggerFactory) error {
	log := lf.NewLogger("fbsim")

	layout := memlayout.Layout{HeapStart: kernelEnd, HeapSize: heapSize}
	scratchAddr := layout.MailboxScratch()
	log.Infof("Allocating Heap %#x-%#x", layout.HeapStart, layout.HeapStart+layout.HeapSize)
	log.Infof("Mailbox Heap Location %#x", scratchAddr)

	// RAM from address zero: the heap, the scratch buffer, then room for
	// the framebuffer and its working space.
	g := framebuffer.Geometry{Width: int(o.width), Height: int(o.height), Depth: int(o.depth)}
	fbBase := uint32(mmio.PageRound(int(scratchAddr) + scratchSize))
	fbSize := uint32(mmio.PageRound(g.Size()))
	ram, err := mmio.Map(o.shm, int(fbBase)+2*int(fbSize))
	if err != nil {
		return errors.Annotate(err, "map simulated RAM")
	}
	defer ram.Close()

	mem := ram.Bytes()
	scratch := mmio.Sub(mem, scratchAddr, scratchSize)
	fw, err := vcsim.New(vcsim.Config{
		Scratch:       scratch,
		ScratchAddr:   uint32(scratchAddr),
		Memory:        mem,
		AllocBase:     fbBase,
		AllocSize:     fbSize,
		BusAlias:      0xC000_0000,
		LoggerFactory: lf,
	})
	if err != nil {
		return errors.Trace(err)
	}

	mb, err := mailbox.New(mailbox.Config{
		Registers:     fw,
		Scratch:       scratch,
		ScratchAddr:   uint32(scratchAddr),
		Mask:          &critical.HostMask{},
		LoggerFactory: lf,
	})
	if err != nil {
		return errors.Trace(err)
	}
	client := property.NewClient(mb, lf)

	cfg := kernel.Config{
		Width: uint32(o.width), Height: uint32(o.height), Depth: uint32(o.depth),
		Align:         kernel.DefaultConfig.Align,
		LoggerFactory: lf,
	}
	surface, err := kernel.InitFramebuffer(client, fw, cfg)
	if err != nil {
		return errors.Annotate(err, "framebuffer init")
	}

	var screen ui.Interface = ui.NewStart(lf)
	if o.splash != "" {
		b, err := os.ReadFile(o.splash)
		if err != nil {
			return errors.Annotate(err, "read splash")
		}
		img, err := ui.DecodeImage(b)
		if err != nil {
			return errors.Annotatef(err, "decode %s", o.splash)
		}
		log.Infof("splash %dx%d", img.Width, img.Height)
		screen = &ui.Splash{Image: img, Background: framebuffer.DefaultScheme.Background, Next: screen}
	}

	err = kernel.Run(ctx, surface, screen, kernel.Options{Frames: o.frames, LoggerFactory: lf})
	if err != nil && !errors.Is(err, context.Canceled) {
		return errors.Annotate(err, "frame loop")
	}
	if err := ram.Flush(); err != nil {
		return errors.Annotate(err, "flush GPU memory")
	}
	log.Infof("%d property requests", fw.Requests())

	if o.out == "" {
		return nil
	}
	f, err := os.Create(o.out)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	if err := png.Encode(f, surface.Physical()); err != nil {
		return errors.Annotatef(err, "encode %s", o.out)
	}
	log.Infof("wrote %s", o.out)
	return errors.Trace(f.Close())
}
