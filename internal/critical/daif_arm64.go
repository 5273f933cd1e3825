//go:build baremetal && arm64

package critical

// Implemented in daif_arm64.s

//go:noescape
func daifSave() uint64

//go:noescape
func daifRestore(state uint64)

// DAIF masks IRQ and FIQ exceptions through the PSTATE.DAIF bits.
type DAIF struct{}

// Disable saves DAIF and sets the I and F bits.
//
//go:nosplit
func (DAIF) Disable() State {
	return State(daifSave())
}

// Restore writes back the saved DAIF value.
//
//go:nosplit
func (DAIF) Restore(s State) {
	daifRestore(uint64(s))
}
