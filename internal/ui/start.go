package ui

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gameos/internal/framebuffer"
	"gameos/internal/logscope"

	gg "github.com/fogleman/gg"
	"github.com/pion/logging"
	"golang.org/x/image/font/basicfont"
)

// FPS bar placement
const (
	BarHeight = 37
	LabelX    = 15
	LabelY    = 18 // baseline
)

// Start shows the frame rate in a black bar across the top of the screen.
type Start struct {
	fps float32
	ctx *gg.Context
	log logging.LeveledLogger
}

// NewStart returns the start screen. A nil factory disables logging.
func NewStart(lf logging.LoggerFactory) *Start {
	return &Start{log: logscope.New(lf, "ui")}
}

// FPS is the rate derived from the last tick.
func (s *Start) FPS() float32 { return s.fps }

// Label is the text drawn in the bar.
func (s *Start) Label() string {
	return fmt.Sprintf("FPS: %v", s.fps)
}

// OnTick implements Interface.
func (s *Start) OnTick(dt time.Duration) {
	if dt <= 0 {
		s.fps = 0
		return
	}
	s.fps = float32(1 / dt.Seconds())
}

// OnInput implements Interface.
func (s *Start) OnInput() {}

// ShouldDraw implements Interface.
func (s *Start) ShouldDraw() bool { return true }

// Draw implements Interface.
func (s *Start) Draw(fb *framebuffer.Surface) {
	w := fb.Width()
	if s.ctx == nil || s.ctx.Width() != w {
		s.log.Debugf("bar context %dx%d", w, BarHeight)
		s.ctx = gg.NewContext(w, BarHeight)
		s.ctx.SetFontFace(basicfont.Face7x13)
	}
	dc := s.ctx
	dc.SetColor(color.Black)
	dc.DrawRectangle(0, 0, float64(w), BarHeight)
	dc.Fill()
	dc.SetColor(color.White)
	dc.DrawString(s.Label(), LabelX, LabelY)

	im, ok := dc.Image().(*image.RGBA)
	if !ok {
		s.log.Errorf("gg backbuffer is %T", dc.Image())
		return
	}
	flush(fb, im)
}

// flush copies an RGBA backbuffer onto the surface, clipped.
func flush(fb *framebuffer.Surface, im *image.RGBA) {
	b := im.Bounds().Intersect(fb.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := im.Pix[im.PixOffset(b.Min.X, y):]
		for x := b.Min.X; x < b.Max.X; x++ {
			p := row[(x-b.Min.X)*4:]
			fb.DrawPixel(x, y, framebuffer.RGB{p[0], p[1], p[2]})
		}
	}
}
