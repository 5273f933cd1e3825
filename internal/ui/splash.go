package ui

import (
	"bufio"
	"encoding/binary"
	"image"
	"image/color"
	"io"
	"time"

	"gameos/internal/framebuffer"

	"github.com/juju/errors"
)

const imageHeader = 8

// Image is a decoded splash image. Pix holds 0xAARRGGBB words row by row.
type Image struct {
	Width, Height int
	Pix           []uint32
}

// DecodeImage parses [u32 width][u32 height][width*height ARGB8888], all
// little endian.
func DecodeImage(b []byte) (*Image, error) {
	if len(b) < imageHeader {
		return nil, errors.NotValidf("image of %d bytes", len(b))
	}
	w := binary.LittleEndian.Uint32(b[0:])
	h := binary.LittleEndian.Uint32(b[4:])
	n := uint64(w) * uint64(h)
	if w == 0 || h == 0 || n*4 > uint64(len(b)-imageHeader) {
		return nil, errors.NotValidf("%dx%d image in %d bytes", w, h, len(b))
	}
	img := &Image{Width: int(w), Height: int(h), Pix: make([]uint32, n)}
	for i := range img.Pix {
		img.Pix[i] = binary.LittleEndian.Uint32(b[imageHeader+i*4:])
	}
	return img, nil
}

// EncodeImage writes src in the format DecodeImage reads.
func EncodeImage(w io.Writer, src image.Image) error {
	bw := bufio.NewWriter(w)
	r := src.Bounds()
	hdr := [2]uint32{uint32(r.Dx()), uint32(r.Dy())}
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return errors.Annotate(err, "write header")
	}
	var px [4]byte
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			// ARGB8888: [A:8][R:8][G:8][B:8] = 0xAARRGGBB
			binary.LittleEndian.PutUint32(px[:], uint32(c.A)<<24|uint32(c.R)<<16|uint32(c.G)<<8|uint32(c.B))
			if _, err := bw.Write(px[:]); err != nil {
				return errors.Annotate(err, "write pixels")
			}
		}
	}
	return errors.Trace(bw.Flush())
}

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model { return color.NRGBAModel }

// At implements image.Image.
func (m *Image) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.Bounds())) {
		return color.NRGBA{}
	}
	v := m.Pix[y*m.Width+x]
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: uint8(v >> 24)}
}

// DrawImage blends img onto fb with its top left corner at (x0, y0).
// Offsets may be negative; anything off screen is skipped.
func DrawImage(fb *framebuffer.Surface, img *Image, x0, y0 int) {
	for y := 0; y < img.Height; y++ {
		sy := y0 + y
		if sy < 0 || sy >= fb.Height() {
			continue
		}
		for x := 0; x < img.Width; x++ {
			sx := x0 + x
			if sx < 0 || sx >= fb.Width() {
				continue
			}
			v := img.Pix[y*img.Width+x]
			src := framebuffer.RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}
			switch a := uint32(v >> 24); a {
			case 0:
			case 0xFF:
				fb.DrawPixel(sx, sy, src)
			default:
				dst, _ := fb.Pixel(sx, sy)
				fb.DrawPixel(sx, sy, blend(src, dst, a))
			}
		}
	}
}

func blend(src, dst framebuffer.RGB, a uint32) framebuffer.RGB {
	var out framebuffer.RGB
	for i := range out {
		out[i] = uint8((uint32(src[i])*a + uint32(dst[i])*(255-a)) / 255)
	}
	return out
}

// Splash shows an image centered on a plain background. It draws once,
// then hands over to Next after Hold has elapsed.
type Splash struct {
	Image      *Image
	Background framebuffer.RGB
	Hold       time.Duration
	Next       Interface

	drawn   bool
	elapsed time.Duration
}

func (s *Splash) done() bool {
	return s.Next != nil && s.drawn && s.elapsed >= s.Hold
}

// Draw implements Interface.
func (s *Splash) Draw(fb *framebuffer.Surface) {
	if s.done() {
		s.Next.Draw(fb)
		return
	}
	fb.Clear(s.Background)
	if s.Image != nil {
		DrawImage(fb, s.Image, (fb.Width()-s.Image.Width)/2, (fb.Height()-s.Image.Height)/2)
	}
	s.drawn = true
}

// ShouldDraw implements Interface.
func (s *Splash) ShouldDraw() bool {
	if s.done() {
		return s.Next.ShouldDraw()
	}
	return !s.drawn
}

// OnInput implements Interface.
func (s *Splash) OnInput() {
	if s.done() {
		s.Next.OnInput()
	}
}

// OnTick implements Interface.
func (s *Splash) OnTick(dt time.Duration) {
	if s.done() {
		s.Next.OnTick(dt)
		return
	}
	if s.drawn {
		s.elapsed += dt
	}
}
