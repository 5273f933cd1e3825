//go:build !(baremetal && arm64)

package kernel

func waitForever() {
	select {}
}
