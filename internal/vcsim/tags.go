package vcsim

import (
	"gameos/internal/property"
)

const pageSize = 4096

// answer walks the tags of buf and fills in responses in place. It reports
// false when the buffer is malformed.
func (f *Firmware) answer(buf []uint32) bool {
	p := 2
	for {
		if p >= len(buf) {
			f.log.Warnf("no end tag in %d words", len(buf))
			return false
		}
		if buf[p] == property.EndTag {
			return true
		}
		if p+3 > len(buf) {
			return false
		}
		id, valueBytes := buf[p], buf[p+1]
		if n := (uint64(valueBytes) + 3) / 4; n > uint64(len(buf)-p-3) {
			f.log.Warnf("tag %#08x overruns the buffer", id)
			return false
		}
		next := p + 3 + (int(valueBytes)+3)/4

		values := buf[p+3 : next]
		if kind, ok := property.KindForID(id); ok {
			if len(values) < kind.ValueWords() {
				f.log.Warnf("tag %v carries %d value bytes, needs %d", kind, valueBytes, kind.ValueWords()*4)
				return false
			}
			n := f.tag(kind, values)
			buf[p+2] = property.TagResponse | uint32(n*4)
		} else {
			f.log.Debugf("unknown tag %#08x", id)
		}
		p = next
	}
}

// tag answers one tag and returns the number of response words.
func (f *Firmware) tag(k property.Kind, v []uint32) int {
	m := &f.mode
	switch k {
	case property.KindSetPhysicalDimensions:
		m.PhysicalWidth, m.PhysicalHeight = v[0], v[1]
		fallthrough
	case property.KindGetPhysicalDimensions:
		v[0], v[1] = m.PhysicalWidth, m.PhysicalHeight
		return 2
	case property.KindSetVirtualDimensions:
		m.VirtualWidth, m.VirtualHeight = v[0], v[1]
		fallthrough
	case property.KindGetVirtualDimensions:
		v[0], v[1] = m.VirtualWidth, m.VirtualHeight
		return 2
	case property.KindSetBitsPerPixel:
		m.Depth = v[0]
		fallthrough
	case property.KindGetBitsPerPixel:
		v[0] = m.Depth
		return 1
	case property.KindGetBytesPerRow:
		v[0] = f.pitch()
		return 1
	case property.KindAllocateBuffer:
		base, size := f.allocation(v[0])
		v[0], v[1] = base|f.cfg.BusAlias, size
		f.alloc = true
		f.log.Debugf("allocated %#x bytes at %#08x", size, base)
		return 2
	case property.KindReleaseBuffer:
		f.alloc = false
		return 0
	}
	return 0
}

func (f *Firmware) pitch() uint32 {
	return f.mode.VirtualWidth * (f.mode.Depth / 8)
}

func (f *Firmware) allocation(align uint32) (base, size uint32) {
	base, size = f.cfg.AllocBase, f.cfg.AllocSize
	if base == 0 {
		base = f.cfg.MemoryBase
		if align > 1 {
			base = (base + align - 1) &^ (align - 1)
		}
	}
	if size == 0 {
		size = f.pitch() * f.mode.VirtualHeight
		size = (size + pageSize - 1) &^ (pageSize - 1)
	}
	return base, size
}

// Allocated reports whether a framebuffer is currently allocated.
func (f *Firmware) Allocated() bool { return f.alloc }
