// Package critical runs work with interrupts masked on the current core.
//
// There is one core and no preemptive scheduler for kernel code, so a masked
// section is all the mutual exclusion the mailbox and console need. Sections
// must not nest: entering one from inside another is a logic error and is not
// detected.
package critical

import "sync"

// State is the interrupt state saved on entry to a section.
type State uint64

// Mask disables and restores interrupts (or their hosted stand-in).
type Mask interface {
	// Disable masks interrupts and returns the state to restore.
	Disable() State
	// Restore puts back a state returned by Disable.
	Restore(State)
}

// Free runs fn with m disabled and restores the previous state afterwards,
// also when fn panics.
func Free(m Mask, fn func()) {
	s := m.Disable()
	defer m.Restore(s)
	fn()
}

// FreeValue is Free for work that produces a result.
func FreeValue[T any](m Mask, fn func() T) T {
	s := m.Disable()
	defer m.Restore(s)
	return fn()
}

// HostMask stands in for interrupt masking when the kernel code runs as a normal
// process (tests, the simulator). The zero value is ready to use.
type HostMask struct {
	mu    sync.Mutex
	depth int
}

// Disable implements Mask.
func (h *HostMask) Disable() State {
	h.mu.Lock()
	h.depth++
	return State(h.depth)
}

// Restore implements Mask.
func (h *HostMask) Restore(State) {
	h.depth--
	h.mu.Unlock()
}

// Held reports whether a section is currently running. Only meaningful when
// called from inside the section itself.
func (h *HostMask) Held() bool {
	return h.depth > 0
}
