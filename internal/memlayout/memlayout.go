// Package memlayout places the kernel heap and the mailbox scratch buffer
// after the end of the kernel image.
package memlayout

import "fmt"

// Memory layout constants
const (
	DefaultHeapSize = 128 << 20 // 128 MiB
	ScratchAlign    = 16
)

// Layout describes the heap [HeapStart, HeapStart+HeapSize).
type Layout struct {
	HeapStart uintptr
	HeapSize  uintptr
}

// Default puts a DefaultHeapSize heap at start, normally the end of .bss.
func Default(start uintptr) Layout {
	return Layout{HeapStart: start, HeapSize: DefaultHeapSize}
}

// HeapEnd is one past the last heap byte plus a guard byte.
func (l Layout) HeapEnd() uintptr {
	return l.HeapStart + l.HeapSize + 1
}

// MailboxScratch is the first 16-byte boundary strictly after HeapEnd. A
// HeapEnd that is already aligned still moves up a full 16 bytes.
func (l Layout) MailboxScratch() uintptr {
	end := l.HeapEnd()
	return end + (ScratchAlign - end%ScratchAlign)
}

func (l Layout) String() string {
	return fmt.Sprintf("heap %#x-%#x, mailbox scratch %#x", l.HeapStart, l.HeapStart+l.HeapSize, l.MailboxScratch())
}
