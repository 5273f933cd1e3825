package kernel

import (
	"gameos/internal/framebuffer"
	"gameos/internal/logscope"
	"gameos/internal/property"

	"github.com/juju/errors"
	"github.com/pion/logging"
)

// busAliasMask covers the VideoCore cache alias bits of a bus address.
const busAliasMask = 0xC0000000

// BusToPhys converts a VideoCore bus address to an ARM physical address.
func BusToPhys(addr uint32) uintptr {
	return uintptr(addr &^ busAliasMask)
}

// Config is the display mode requested at boot.
type Config struct {
	Width, Height, Depth uint32
	// Align is the framebuffer alignment asked of the firmware.
	Align uint32
	// LoggerFactory for logging. If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// DefaultConfig is 640x480 at 24 bits, 16-byte aligned.
var DefaultConfig = Config{Width: 640, Height: 480, Depth: 24, Align: 16}

// InitFramebuffer sets the display mode, allocates the framebuffer and
// builds a double-buffered surface over it.
func InitFramebuffer(c *property.Client, mapper framebuffer.Mapper, cfg Config) (*framebuffer.Surface, error) {
	log := logscope.New(cfg.LoggerFactory, "kernel")

	dims, err := c.Send(
		property.SetPhysicalDimensions(cfg.Width, cfg.Height),
		property.SetVirtualDimensions(cfg.Width, cfg.Height),
		property.SetBitsPerPixel(cfg.Depth),
	)
	if err != nil {
		return nil, errors.Annotate(err, "set display mode")
	}
	g := framebuffer.Geometry{
		Width:  int(dims.Word(5)),
		Height: int(dims.Word(6)),
		Depth:  int(dims.Value(2, 0)),
	}
	log.Infof("Width %d", g.Width)
	log.Infof("Height %d", g.Height)

	// Optional; the pitch is computed from the geometry either way
	if pitch, err := c.Send(property.GetBytesPerRow()); err != nil {
		log.Warnf("framebufferInit: get pitch failed, using calculated pitch: %v", err)
	} else if int(pitch.Value(0, 0)) != g.Pitch() {
		log.Warnf("framebufferInit: firmware pitch %d, calculated %d", pitch.Value(0, 0), g.Pitch())
	}

	buf, err := c.Send(property.AllocateBuffer(cfg.Align))
	if err != nil {
		return nil, errors.Annotate(err, "allocate framebuffer")
	}
	base, size := BusToPhys(buf.Word(5)), int(buf.Word(6))
	log.Infof("Framebuffer located at %#x size %#x", base, size)
	log.Infof("Working space located at %#x size %#x", base+uintptr(size), size)

	s, err := framebuffer.New(g, base, size, mapper, cfg.LoggerFactory)
	if err != nil {
		return nil, errors.Annotate(err, "build surface")
	}
	return s, nil
}
