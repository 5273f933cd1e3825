//go:build baremetal && arm64 && pi4

package main

import "gameos/internal/kernel"

var board = kernel.Pi4
