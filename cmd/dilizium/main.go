// Command dilizium generates two-party key shares, signs and verifies messages
// with them, and benchmarks the signing protocol.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
