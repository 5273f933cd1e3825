//go:build unix

package mmio

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/juju/errors"
	"golang.org/x/sys/unix"
)

// Mapping is a page-aligned memory region backed by mmap.
type Mapping struct {
	m    mmap.MMap
	file *os.File
}

// PageRound rounds size up to a whole number of pages.
func PageRound(size int) int {
	page := unix.Getpagesize()
	return (size + page - 1) &^ (page - 1)
}

// Map maps size bytes (rounded up to a page). With an empty path the memory is
// anonymous; otherwise the file is created or grown to the mapped size and
// shared, so other processes can watch it.
func Map(path string, size int) (*Mapping, error) {
	if size <= 0 {
		return nil, errors.NotValidf("mapping size %d", size)
	}
	size = PageRound(size)

	if path == "" {
		m, err := mmap.MapRegion(nil, size, mmap.RDWR, mmap.ANON, 0)
		if err != nil {
			return nil, errors.Annotate(err, "anonymous mmap")
		}
		return &Mapping{m: m}, nil
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Annotatef(err, "open %s", path)
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, errors.Annotatef(err, "truncate %s", path)
	}
	m, err := mmap.MapRegion(f, size, mmap.RDWR, 0, 0)
	if err != nil {
		f.Close()
		return nil, errors.Annotatef(err, "mmap %s", path)
	}
	return &Mapping{m: m, file: f}, nil
}

// Bytes returns the mapped memory.
func (m *Mapping) Bytes() Bytes {
	return Bytes(m.m)
}

// Flush writes a file-backed mapping back to its file.
func (m *Mapping) Flush() error {
	if m.file == nil {
		return nil
	}
	return errors.Trace(m.m.Flush())
}

// Close unmaps the memory and closes the backing file, if any.
func (m *Mapping) Close() error {
	err := m.m.Unmap()
	if m.file != nil {
		if cerr := m.file.Close(); err == nil {
			err = cerr
		}
	}
	return errors.Trace(err)
}
