package framebuffer

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
)

// arena hands out windows of one byte slice starting at base.
type arena struct {
	base uintptr
	mem  []byte
}

func (a *arena) Map(addr uintptr, size int) ([]byte, error) {
	if addr < a.base || int(addr-a.base)+size > len(a.mem) {
		return nil, errors.New("outside arena")
	}
	off := int(addr - a.base)
	return a.mem[off : off+size], nil
}

var vga = Geometry{Width: 640, Height: 480, Depth: 24}

func newSurface(t *testing.T) (*Surface, *arena) {
	t.Helper()
	a := &arena{base: 0x1000_0000, mem: make([]byte, 2*vga.Size())}
	s, err := New(vga, a.base, vga.Size(), a, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, a
}

func TestGeometry(t *testing.T) {
	tests := []struct {
		g     Geometry
		bpp   int
		pitch int
	}{
		{Geometry{640, 480, 24}, 3, 1920},
		{Geometry{1024, 768, 32}, 4, 4096},
		{Geometry{1, 1, 24}, 3, 3},
	}
	for _, tt := range tests {
		if got := tt.g.BytesPerPixel(); got != tt.bpp {
			t.Errorf("%+v.BytesPerPixel() = %d, want %d", tt.g, got, tt.bpp)
		}
		if got := tt.g.Pitch(); got != tt.pitch {
			t.Errorf("%+v.Pitch() = %d, want %d", tt.g, got, tt.pitch)
		}
	}
}

func TestNewValidates(t *testing.T) {
	a := &arena{base: 0, mem: make([]byte, 8<<20)}
	tests := []struct {
		name string
		g    Geometry
		size int
		want error
	}{
		{"16-bit depth", Geometry{640, 480, 16}, 640 * 480 * 2, nil},
		{"odd depth", Geometry{640, 480, 30}, 640 * 480 * 4, nil},
		{"zero width", Geometry{0, 480, 24}, 1920 * 480, nil},
		{"short allocation", vga, vga.Size() - 1, ErrTooSmall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.g, 0, tt.size, a, nil)
			if err == nil {
				t.Fatalf("New() accepted %+v with %d bytes", tt.g, tt.size)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
			t.Logf("New(%+v) = %v", tt.g, err)
		})
	}
}

func TestNewNeedsRoomForWorkingSpace(t *testing.T) {
	a := &arena{base: 0x1000, mem: make([]byte, vga.Size())}
	if _, err := New(vga, a.base, vga.Size(), a, nil); err == nil {
		t.Errorf("New() succeeded without room for the working surface")
	}
}

func TestNewSplitsAndClears(t *testing.T) {
	a := &arena{base: 0x1000_0000, mem: make([]byte, 2*vga.Size())}
	for i := range a.mem {
		a.mem[i] = 0x5A
	}
	s, err := New(vga, a.base, vga.Size(), a, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.Width() != 640 || s.Height() != 480 || s.BytesPerPixel() != 3 || s.Pitch() != 1920 {
		t.Errorf("surface %dx%d bpp %d pitch %d", s.Width(), s.Height(), s.BytesPerPixel(), s.Pitch())
	}
	if s.Base() != a.base {
		t.Errorf("Base() = %#x, want %#x", s.Base(), a.base)
	}
	for i, b := range a.mem[vga.Size():] {
		if b != 0 {
			t.Fatalf("working byte %d = %#x, want 0", i, b)
		}
	}
	if a.mem[0] != 0x5A {
		t.Errorf("New() touched scan-out memory")
	}
}

func TestDrawPixel(t *testing.T) {
	s, a := newSurface(t)
	work := a.mem[vga.Size():]

	if err := s.DrawPixel(639, 479, White); err != nil {
		t.Fatalf("DrawPixel(639, 479) error = %v", err)
	}
	off := 479*1920 + 639*3
	if work[off] != 0xFF || work[off+1] != 0xFF || work[off+2] != 0xFF {
		t.Errorf("working bytes at %d = %x", off, work[off:off+3])
	}
	if a.mem[off] != 0 {
		t.Errorf("DrawPixel() wrote to scan-out memory")
	}

	if err := s.DrawPixel(2, 1, RGB{1, 2, 3}); err != nil {
		t.Fatalf("DrawPixel(2, 1) error = %v", err)
	}
	if got := work[1920+6 : 1920+9]; got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("byte order = %x, want 010203", got)
	}
}

func TestDrawPixelOutOfBounds(t *testing.T) {
	s, a := newSurface(t)
	before := append([]byte(nil), a.mem...)

	for _, p := range []image.Point{{640, 0}, {0, 480}, {-1, 0}, {0, -1}, {1 << 20, 1 << 20}} {
		err := s.DrawPixel(p.X, p.Y, White)
		if !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("DrawPixel(%d, %d) error = %v, want ErrOutOfBounds", p.X, p.Y, err)
		}
	}
	for i := range before {
		if a.mem[i] != before[i] {
			t.Fatalf("byte %d changed by an out of bounds draw", i)
		}
	}
}

func TestPresent(t *testing.T) {
	s, a := newSurface(t)
	s.DrawPixel(10, 10, BrightGreen)
	off := 10*1920 + 30
	if a.mem[off] != 0 {
		t.Fatalf("pixel visible before Present")
	}

	s.Present()
	if got := RGB(a.mem[off : off+3]); got != BrightGreen {
		t.Errorf("scan-out pixel = %v, want %v", got, BrightGreen)
	}

	snapshot := append([]byte(nil), a.mem...)
	s.Present()
	for i := range snapshot {
		if a.mem[i] != snapshot[i] {
			t.Fatalf("second Present changed byte %d", i)
		}
	}
}

func TestFillRectClips(t *testing.T) {
	s, _ := newSurface(t)
	s.FillRect(-5, -5, 10, 10, BrightRed)
	s.FillRect(635, 475, 100, 100, BrightBlue)

	if c, _ := s.Pixel(4, 4); c != BrightRed {
		t.Errorf("Pixel(4, 4) = %v, want red", c)
	}
	if c, _ := s.Pixel(5, 5); c != Black {
		t.Errorf("Pixel(5, 5) = %v, want untouched", c)
	}
	if c, _ := s.Pixel(639, 479); c != BrightBlue {
		t.Errorf("Pixel(639, 479) = %v, want blue", c)
	}
	if _, ok := s.Pixel(640, 479); ok {
		t.Errorf("Pixel() reported a point outside the surface")
	}
}

func TestDrawImage(t *testing.T) {
	s, _ := newSurface(t)
	src := image.NewUniform(color.RGBA{0x10, 0x20, 0x30, 0xFF})
	draw.Draw(s, image.Rect(600, 460, 700, 500), src, image.Point{}, draw.Src)

	if got := FromColor(s.At(639, 479)); got != (RGB{0x10, 0x20, 0x30}) {
		t.Errorf("At(639, 479) = %v", got)
	}
	if got := FromColor(s.At(599, 479)); got != Black {
		t.Errorf("At(599, 479) = %v, want black", got)
	}

	s.Present()
	phys := s.Physical()
	if phys.Bounds() != s.Bounds() {
		t.Errorf("Physical().Bounds() = %v", phys.Bounds())
	}
	if got := FromColor(phys.At(600, 460)); got != (RGB{0x10, 0x20, 0x30}) {
		t.Errorf("Physical().At(600, 460) = %v", got)
	}
}

func TestFromColor(t *testing.T) {
	tests := []struct {
		in   color.Color
		want RGB
	}{
		{color.White, White},
		{color.Black, Black},
		{color.RGBA{0x19, 0x1B, 0x70, 0xFF}, MidnightBlue},
		{White, White},
	}
	for _, tt := range tests {
		if got := FromColor(tt.in); got != tt.want {
			t.Errorf("FromColor(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
