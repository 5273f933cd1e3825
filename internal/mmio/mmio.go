// Package mmio provides 32-bit register and memory access for hardware
// windows such as the mailbox block and the scratch buffer shared with the
// VideoCore firmware.
package mmio

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/juju/errors"
)

// Region is a window of device-visible memory accessed in 32-bit units.
// Accesses are never cached in registers or elided by the compiler.
type Region interface {
	Load32(off uintptr) uint32
	Store32(off uintptr, v uint32)
	// Len is the size of the window in bytes.
	Len() int
}

// Bytes is a Region over a byte slice. Offsets must be 4-byte aligned
// and inside the slice.
type Bytes []byte

func (b Bytes) word(off uintptr) *uint32 {
	if off&3 != 0 || off+4 > uintptr(len(b)) {
		panic(fmt.Sprintf("mmio: bad 32-bit access at offset %#x (len %#x)", off, len(b)))
	}
	return (*uint32)(unsafe.Pointer(&b[off]))
}

// Load32 implements Region.
//
//go:nosplit
func (b Bytes) Load32(off uintptr) uint32 {
	return atomic.LoadUint32(b.word(off))
}

// Store32 implements Region.
//
//go:nosplit
func (b Bytes) Store32(off uintptr, v uint32) {
	atomic.StoreUint32(b.word(off), v)
}

// Len implements Region.
func (b Bytes) Len() int {
	return len(b)
}

// Physical views size bytes of the physical address space starting at base.
// Only valid when running with an identity mapping (bare metal).
func Physical(base uintptr, size int) Bytes {
	return unsafe.Slice((*byte)(unsafe.Pointer(base)), size)
}

// PhysicalMapper hands out windows of the identity-mapped physical address space.
type PhysicalMapper struct{}

// Map returns the physical window [addr, addr+size).
func (PhysicalMapper) Map(addr uintptr, size int) ([]byte, error) {
	if addr == 0 || size <= 0 {
		return nil, errors.NotValidf("physical window %#x+%#x", addr, size)
	}
	return Physical(addr, size), nil
}

// Sub returns the part of r starting at off. Loads and stores through the
// result are relative to off.
func Sub(r Region, off uintptr, size int) Region {
	if off+uintptr(size) > uintptr(r.Len()) {
		panic(fmt.Sprintf("mmio: sub-region %#x+%#x outside %#x", off, size, r.Len()))
	}
	return subRegion{r: r, off: off, size: size}
}

type subRegion struct {
	r    Region
	off  uintptr
	size int
}

func (s subRegion) Load32(off uintptr) uint32     { return s.r.Load32(s.off + off) }
func (s subRegion) Store32(off uintptr, v uint32) { s.r.Store32(s.off+off, v) }
func (s subRegion) Len() int                      { return s.size }
