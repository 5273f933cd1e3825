package framebuffer

import (
	"image"
	"image/color"
	"image/draw"
)

var _ draw.Image = (*Surface)(nil)

// Bounds implements image.Image.
func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.geom.Width, s.geom.Height)
}

// ColorModel implements image.Image.
func (s *Surface) ColorModel() color.Model {
	return color.RGBAModel
}

// At implements image.Image, reading the working surface.
func (s *Surface) At(x, y int) color.Color {
	c, ok := s.Pixel(x, y)
	if !ok {
		return color.RGBA{}
	}
	return c
}

// Set implements draw.Image. Out of range writes are dropped; DrawPixel has
// already logged them.
func (s *Surface) Set(x, y int, c color.Color) {
	_ = s.DrawPixel(x, y, FromColor(c))
}

// Physical returns a copy of what is on screen.
func (s *Surface) Physical() image.Image {
	img := image.NewRGBA(s.Bounds())
	bpp := s.geom.BytesPerPixel()
	for y := 0; y < s.geom.Height; y++ {
		row := s.physical[y*s.geom.Pitch():]
		for x := 0; x < s.geom.Width; x++ {
			p := row[x*bpp:]
			img.SetRGBA(x, y, color.RGBA{p[0], p[1], p[2], 0xFF})
		}
	}
	return img
}
