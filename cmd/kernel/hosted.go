//go:build !(baremetal && arm64)

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintf(os.Stderr, "kernel: build with GOARCH=arm64 -tags baremetal for hardware, or run cmd/fbsim\n")
	os.Exit(1)
}
