package kernel

import "github.com/pion/logging"

// park stops the core for good.
var park = waitForever

// Halt reports why the kernel stopped and parks the core. It does not return
// on real hardware.
func Halt(log logging.LeveledLogger, err error) {
	if err != nil {
		log.Errorf("Kernel panic: %v", err)
	} else {
		log.Error("Kernel panic!")
	}
	park()
}
