//go:build baremetal && arm64

package kernel

import "time"

// Implemented in timer_arm64.s

func readCounter() uint64

func readCounterFrequency() uint64

func waitForEvent()

func waitForever() {
	for {
		waitForEvent()
	}
}

// GenericTimer is a Clock over the ARM generic timer virtual counter.
type GenericTimer struct {
	start uint64
	freq  uint64
}

// NewGenericTimer starts a clock at zero. A zero CNTFRQ_EL0 is taken to be
// the QEMU default of 62.5 MHz.
func NewGenericTimer() *GenericTimer {
	freq := readCounterFrequency()
	if freq == 0 {
		freq = 62500000
	}
	return &GenericTimer{start: readCounter(), freq: freq}
}

// Now implements Clock.
//
//go:nosplit
func (t *GenericTimer) Now() time.Duration {
	ticks := readCounter() - t.start
	sec := ticks / t.freq
	rem := ticks % t.freq
	return time.Duration(sec)*time.Second + time.Duration(rem*uint64(time.Second)/t.freq)
}
