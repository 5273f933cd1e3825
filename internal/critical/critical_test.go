package critical

import (
	"sync"
	"testing"
)

type countingMask struct {
	disabled int
	restored []State
}

func (c *countingMask) Disable() State {
	c.disabled++
	return State(c.disabled * 10)
}

func (c *countingMask) Restore(s State) {
	c.restored = append(c.restored, s)
}

func TestFreeRestoresState(t *testing.T) {
	m := &countingMask{}
	ran := false
	Free(m, func() { ran = true })

	if !ran {
		t.Fatalf("Free() did not run the work")
	}
	if m.disabled != 1 || len(m.restored) != 1 || m.restored[0] != 10 {
		t.Errorf("Free() disabled=%d restored=%v, want 1 and [10]", m.disabled, m.restored)
	}
}

func TestFreeRestoresOnPanic(t *testing.T) {
	m := &countingMask{}
	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("panic did not propagate out of Free()")
			}
		}()
		Free(m, func() { panic("boom") })
	}()
	if len(m.restored) != 1 {
		t.Errorf("state restored %d times after panic, want 1", len(m.restored))
	}
}

func TestFreeValue(t *testing.T) {
	m := &countingMask{}
	got := FreeValue(m, func() int { return 42 })
	if got != 42 {
		t.Errorf("FreeValue() = %d, want 42", got)
	}
}

func TestHostMaskExclusive(t *testing.T) {
	var (
		mask    HostMask
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				Free(&mask, func() {
					if !mask.Held() {
						t.Errorf("Held() = false inside a section")
					}
					counter++
				})
			}
		}()
	}
	wg.Wait()
	if counter != 8000 {
		t.Errorf("counter = %d, want 8000", counter)
	}
}
