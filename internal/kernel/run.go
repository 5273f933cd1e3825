package kernel

import (
	"context"
	"time"

	"gameos/internal/framebuffer"
	"gameos/internal/logscope"
	"gameos/internal/ui"

	"github.com/pion/logging"
)

// Clock is the frame timer.
type Clock interface {
	Now() time.Duration
}

// SystemClock reads the monotonic clock of the hosting OS.
type SystemClock struct{ start time.Time }

// NewSystemClock starts a clock at zero.
func NewSystemClock() *SystemClock { return &SystemClock{start: time.Now()} }

// Now implements Clock.
func (c *SystemClock) Now() time.Duration { return time.Since(c.start) }

// Options control the frame loop.
type Options struct {
	// Clock defaults to a SystemClock.
	Clock Clock
	// Frames stops the loop after that many frames. Zero runs until ctx is done.
	Frames int
	// LoggerFactory for logging. If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Run drives iface: each frame ticks it with the time since the previous
// frame, draws it if it asks to be drawn, and presents the surface.
func Run(ctx context.Context, s *framebuffer.Surface, iface ui.Interface, opts Options) error {
	log := logscope.New(opts.LoggerFactory, "kernel")
	clock := opts.Clock
	if clock == nil {
		clock = NewSystemClock()
	}

	last := clock.Now()
	for frame := 0; opts.Frames == 0 || frame < opts.Frames; frame++ {
		select {
		case <-ctx.Done():
			log.Debugf("frame loop stopped after %d frames", frame)
			return ctx.Err()
		default:
		}

		now := clock.Now()
		iface.OnTick(now - last)
		last = now
		if iface.ShouldDraw() {
			iface.Draw(s)
		}
		s.Present()
	}
	log.Debugf("frame loop finished %d frames", opts.Frames)
	return nil
}
