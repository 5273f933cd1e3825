//go:build unix

package mmio

import (
	"path/filepath"
	"testing"
)

func TestMapAnonymous(t *testing.T) {
	m, err := Map("", 100)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	defer m.Close()

	b := m.Bytes()
	if len(b) != PageRound(100) {
		t.Errorf("len = %d, want %d", len(b), PageRound(100))
	}
	b.Store32(0, 1)
	if b.Load32(0) != 1 {
		t.Errorf("anonymous mapping not writable")
	}
}

func TestMapFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surface")
	m, err := Map(path, 4096)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	m.Bytes()[0] = 0xAB
	if err := m.Flush(); err != nil {
		t.Errorf("Flush() error = %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestMapRejectsEmpty(t *testing.T) {
	if _, err := Map("", 0); err == nil {
		t.Errorf("Map() of zero bytes succeeded")
	}
}
