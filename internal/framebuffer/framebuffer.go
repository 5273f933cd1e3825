// Package framebuffer owns the scan-out memory the firmware allocates and a
// working surface of the same size directly behind it. Drawing only ever
// touches the working surface; Present copies it to the display in one pass,
// so a half-drawn frame is never visible.
package framebuffer

import (
	"gameos/internal/logscope"

	"github.com/juju/errors"
	"github.com/pion/logging"
)

var (
	// ErrOutOfBounds is returned for pixel coordinates outside the surface.
	ErrOutOfBounds = errors.New("framebuffer: pixel out of bounds")
	// ErrTooSmall is returned when the allocation cannot hold the geometry.
	ErrTooSmall = errors.New("framebuffer: buffer smaller than geometry")
)

// Geometry is the display mode the firmware accepted.
type Geometry struct {
	Width  int
	Height int
	// Depth is in bits per pixel.
	Depth int
}

// BytesPerPixel is Depth/8.
func (g Geometry) BytesPerPixel() int { return g.Depth / 8 }

// Pitch is the length of one row in bytes.
func (g Geometry) Pitch() int { return g.Width * g.BytesPerPixel() }

// Size is the byte length of one full frame.
func (g Geometry) Size() int { return g.Height * g.Pitch() }

func (g Geometry) validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return errors.NotValidf("geometry %dx%d", g.Width, g.Height)
	}
	if g.Depth%8 != 0 || g.Depth < 24 {
		return errors.NotSupportedf("color depth %d", g.Depth)
	}
	return nil
}

// Mapper turns an address range into accessible memory. On bare metal the
// physical address space is identity mapped; hosted, the simulated GPU
// memory provides the bytes.
type Mapper interface {
	Map(addr uintptr, size int) ([]byte, error)
}

// Surface is a double-buffered framebuffer.
type Surface struct {
	geom     Geometry
	base     uintptr
	size     int
	physical []byte
	working  []byte
	log      logging.LeveledLogger
}

// New builds a surface over the allocation [base, base+size). The working
// surface occupies [base+size, base+2*size), so mapper must be able to hand
// out both halves as one range.
func New(g Geometry, base uintptr, size int, mapper Mapper, lf logging.LoggerFactory) (*Surface, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	if size < g.Size() {
		return nil, errors.Annotatef(ErrTooSmall, "%d bytes for %dx%dx%d", size, g.Width, g.Height, g.Depth)
	}
	mem, err := mapper.Map(base, 2*size)
	if err != nil {
		return nil, errors.Annotatef(err, "map framebuffer and working space at %#x", base)
	}
	if len(mem) < 2*size {
		return nil, errors.Annotatef(ErrTooSmall, "mapped %d bytes, need %d", len(mem), 2*size)
	}

	s := &Surface{
		geom:     g,
		base:     base,
		size:     size,
		physical: mem[:size:size],
		working:  mem[size : 2*size : 2*size],
		log:      logscope.New(lf, "framebuffer"),
	}
	clear(s.working)
	s.log.Debugf("surface %dx%d depth %d pitch %d at %#x", g.Width, g.Height, g.Depth, g.Pitch(), base)
	return s, nil
}

// Width is the surface width in pixels.
func (s *Surface) Width() int { return s.geom.Width }

// Height is the surface height in pixels.
func (s *Surface) Height() int { return s.geom.Height }

// Pitch is the row length in bytes.
func (s *Surface) Pitch() int { return s.geom.Pitch() }

// BytesPerPixel is the pixel stride in bytes.
func (s *Surface) BytesPerPixel() int { return s.geom.BytesPerPixel() }

// Geometry returns the mode the surface was built for.
func (s *Surface) Geometry() Geometry { return s.geom }

// Base is the address of the scan-out buffer.
func (s *Surface) Base() uintptr { return s.base }

func (s *Surface) offset(x, y int) int {
	return y*s.geom.Pitch() + x*s.geom.BytesPerPixel()
}

func (s *Surface) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.geom.Width && y < s.geom.Height
}

// DrawPixel writes c at (x, y) on the working surface.
func (s *Surface) DrawPixel(x, y int, c RGB) error {
	if !s.inside(x, y) {
		s.log.Warnf("draw_pixel: (%d, %d) outside %dx%d", x, y, s.geom.Width, s.geom.Height)
		return errors.Annotatef(ErrOutOfBounds, "(%d, %d)", x, y)
	}
	copy(s.working[s.offset(x, y):], c[:])
	return nil
}

// Pixel reads (x, y) from the working surface.
func (s *Surface) Pixel(x, y int) (RGB, bool) {
	var c RGB
	if !s.inside(x, y) {
		return c, false
	}
	copy(c[:], s.working[s.offset(x, y):])
	return c, true
}

// FillRect paints the rectangle at (x, y) clipped to the surface.
func (s *Surface) FillRect(x, y, w, h int, c RGB) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, s.geom.Width), min(y+h, s.geom.Height)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			copy(s.working[s.offset(px, py):], c[:])
		}
	}
}

// Clear fills the working surface with c.
func (s *Surface) Clear(c RGB) {
	s.FillRect(0, 0, s.geom.Width, s.geom.Height, c)
}

// Present copies the working surface to the display.
func (s *Surface) Present() {
	copy(s.physical, s.working)
}
