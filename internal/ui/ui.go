// Package ui holds the screens the kernel shows and the frame callbacks
// that drive them.
package ui

import (
	"time"

	"gameos/internal/framebuffer"
)

// Interface is a screen. The frame loop calls OnTick every frame, then
// Draw when ShouldDraw reports true, then presents the surface.
type Interface interface {
	Draw(s *framebuffer.Surface)
	ShouldDraw() bool
	OnInput()
	OnTick(dt time.Duration)
}

// Entrypoint is the first screen after boot.
func Entrypoint() Interface {
	return NewStart(nil)
}
